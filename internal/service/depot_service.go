package service

import (
	"context"
	"errors"

	"gescom/internal/apierror"
	"gescom/internal/dto"
	"gescom/internal/model"
	"gescom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DepotService manages depots and direct operations on their stock rows.
type DepotService interface {
	Creer(ctx context.Context, req dto.DepotRequest) (*dto.DepotResponse, error)
	Obtenir(ctx context.Context, id uuid.UUID) (*dto.DepotResponse, error)
	Lister(ctx context.Context) ([]dto.DepotResponse, error)
	Modifier(ctx context.Context, id uuid.UUID, req dto.DepotRequest) (*dto.DepotResponse, error)
	// Supprimer merges the depot rows into destination when given, otherwise
	// drops them, then recomputes every touched article. A depot named by any
	// transfer, whatever its status, is kept for the transfer history.
	Supprimer(ctx context.Context, id uuid.UUID, destination *uuid.UUID) error
	Ajuster(ctx context.Context, id uuid.UUID, req dto.AjusterStockDepotRequest) (*dto.StockDepotResponse, error)
	Stock(ctx context.Context, id uuid.UUID) (*dto.DepotStockResponse, error)
}

type depotService struct {
	tx         TxRunner
	repo       repository.DepotRepository
	stocks     repository.StockDepotRepository
	transferts repository.TransfertRepository
	registre   *RegistreDepot
	inventaire InventaireService
	cache      *StockCache
}

func NewDepotService(
	tx TxRunner,
	repo repository.DepotRepository,
	stocks repository.StockDepotRepository,
	transferts repository.TransfertRepository,
	registre *RegistreDepot,
	inventaire InventaireService,
	cache *StockCache,
) DepotService {
	return &depotService{
		tx:         tx,
		repo:       repo,
		stocks:     stocks,
		transferts: transferts,
		registre:   registre,
		inventaire: inventaire,
		cache:      cache,
	}
}

func (s *depotService) Creer(ctx context.Context, req dto.DepotRequest) (*dto.DepotResponse, error) {
	if err := s.nomLibre(ctx, req.Nom, uuid.Nil); err != nil {
		return nil, err
	}
	d := model.Depot{ID: uuid.New(), Nom: req.Nom, Description: req.Description}
	if err := s.repo.Create(ctx, &d); err != nil {
		return nil, err
	}
	return depotToResponse(&d), nil
}

func (s *depotService) Obtenir(ctx context.Context, id uuid.UUID) (*dto.DepotResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Dépôt introuvable")
	}
	return depotToResponse(d), nil
}

func (s *depotService) Lister(ctx context.Context) ([]dto.DepotResponse, error) {
	depots, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DepotResponse, 0, len(depots))
	for i := range depots {
		out = append(out, *depotToResponse(&depots[i]))
	}
	return out, nil
}

// Modifier renames a depot. Transfers keep the name they were written with.
func (s *depotService) Modifier(ctx context.Context, id uuid.UUID, req dto.DepotRequest) (*dto.DepotResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Dépôt introuvable")
	}
	if req.Nom != d.Nom {
		if err := s.nomLibre(ctx, req.Nom, d.ID); err != nil {
			return nil, err
		}
	}
	d.Nom = req.Nom
	d.Description = req.Description
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	s.cache.Invalider(ctx, d.ID)
	return depotToResponse(d), nil
}

func (s *depotService) Supprimer(ctx context.Context, id uuid.UUID, destination *uuid.UUID) error {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "Dépôt introuvable")
	}
	if destination != nil {
		if *destination == d.ID {
			return apierror.Validation("Le dépôt de destination doit être différent du dépôt supprimé")
		}
		if _, err := s.repo.FindByID(ctx, *destination); err != nil {
			return notFound(err, "Dépôt de destination introuvable")
		}
	}

	var touches []uuid.UUID
	err = s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.FindForUpdateTx(tx, d.ID); err != nil {
			return notFound(err, "Dépôt introuvable")
		}
		n, err := s.transferts.CountByDepotTx(tx, d.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apierror.Conflict("Le dépôt %s est référencé par %d transfert(s) et ne peut pas être supprimé", d.Nom, n)
		}
		if destination != nil {
			if _, err := s.repo.FindByIDTx(tx, *destination); err != nil {
				return notFound(err, "Dépôt de destination introuvable")
			}
		}
		rows, err := s.stocks.ListByDepotForUpdateTx(tx, d.ID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if destination != nil {
				if _, err := s.registre.AjusterTx(tx, row.ArticleID, *destination, row.Qte); err != nil {
					return err
				}
			}
			if err := s.stocks.DeleteTx(tx, row.ID); err != nil {
				return err
			}
			touches = append(touches, row.ArticleID)
		}
		if err := s.registre.RecalculerTx(tx, touches, model.MouvementSuppressionDepot, refLabel("Suppression dépôt", d.Nom), &d.ID); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, d.ID)
	})
	if err != nil {
		return err
	}

	if destination != nil {
		s.cache.Invalider(ctx, d.ID, *destination)
	} else {
		s.cache.Invalider(ctx, d.ID)
	}
	log.Info().Str("depot", d.Nom).Int("articles", len(touches)).Bool("fusion", destination != nil).Msg("dépôt supprimé")
	return nil
}

// Ajuster applies a signed delta to one article of the depot (inventory
// count, initial stocking). The row cannot go below zero.
func (s *depotService) Ajuster(ctx context.Context, id uuid.UUID, req dto.AjusterStockDepotRequest) (*dto.StockDepotResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Dépôt introuvable")
	}
	articleID, err := parseID(req.ArticleID, "article_id")
	if err != nil {
		return nil, err
	}
	if req.Delta.IsZero() {
		return nil, apierror.Validation("delta ne peut pas être nul")
	}
	motif := req.Motif
	if motif == "" {
		motif = refLabel("Ajustement dépôt", d.Nom)
	}

	resp := &dto.StockDepotResponse{ArticleID: articleID.String(), DepotID: d.ID.String(), Depot: d.Nom}
	err = s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		art, err := s.inventaire.ArticleTx(tx, articleID)
		if err != nil {
			return err
		}
		disponible, err := s.registre.DisponibleTx(tx, articleID, d.ID)
		if err != nil {
			return err
		}
		if disponible.Add(req.Delta).IsNegative() {
			return apierror.Validation("Stock insuffisant pour l'article %s dans le dépôt %s : disponible %s, ajustement %s",
				art.Reference, d.Nom, disponible.String(), req.Delta.String())
		}
		qte, err := s.registre.AjusterTx(tx, articleID, d.ID, req.Delta)
		if err != nil {
			return err
		}
		resp.Qte = qte
		resp.Reference = art.Reference
		resp.Designation = art.Designation
		return s.registre.RecalculerTx(tx, []uuid.UUID{articleID}, model.MouvementAjustementDepot, motif, &d.ID)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalider(ctx, d.ID)
	log.Info().Str("depot", d.Nom).Str("article", resp.Reference).Str("delta", req.Delta.String()).Msg("stock dépôt ajusté")
	return resp, nil
}

// Stock lists the rows of a depot, served from the cache when possible.
func (s *depotService) Stock(ctx context.Context, id uuid.UUID) (*dto.DepotStockResponse, error) {
	if resp, ok := s.cache.Depot(ctx, id); ok {
		return resp, nil
	}
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Dépôt introuvable")
	}
	rows, err := s.stocks.ListByDepot(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.DepotStockResponse{
		DepotID: d.ID.String(),
		Depot:   d.Nom,
		Lignes:  make([]dto.StockDepotResponse, 0, len(rows)),
	}
	for i := range rows {
		r := stockDepotToResponse(&rows[i])
		r.Depot = d.Nom
		resp.Lignes = append(resp.Lignes, r)
	}
	s.cache.StockerDepot(ctx, resp)
	return resp, nil
}

func (s *depotService) nomLibre(ctx context.Context, nom string, self uuid.UUID) error {
	existant, err := s.repo.FindByNom(ctx, nom)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return err
	case existant.ID != self:
		return apierror.Conflict("Un dépôt nommé %s existe déjà", nom)
	}
	return nil
}

func depotToResponse(d *model.Depot) *dto.DepotResponse {
	return &dto.DepotResponse{ID: d.ID.String(), Nom: d.Nom, Description: d.Description}
}
