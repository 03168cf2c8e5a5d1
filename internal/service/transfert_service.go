package service

import (
	"context"
	"errors"
	"time"

	"gescom/internal/apierror"
	"gescom/internal/dto"
	"gescom/internal/model"
	"gescom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransfertService moves stock between depots. Transfers follow the state
// machine En cours → Terminé / Annulé; every transition that touches stock
// runs in one transaction and reconciles Article.qte with the depot rows.
type TransfertService interface {
	Creer(ctx context.Context, req dto.TransfertRequest) (*dto.TransfertResponse, error)
	Modifier(ctx context.Context, id uuid.UUID, req dto.TransfertRequest) (*dto.TransfertResponse, error)
	ChangerStatut(ctx context.Context, id uuid.UUID, statut string) (*dto.TransfertResponse, error)
	Supprimer(ctx context.Context, id uuid.UUID) error
	Obtenir(ctx context.Context, id uuid.UUID) (*dto.TransfertResponse, error)
	Lister(ctx context.Context, filter dto.TransfertFilter) (*dto.Page[dto.TransfertResponse], error)
	ProchainNumero(ctx context.Context) (*dto.NumeroResponse, error)
}

type transfertService struct {
	tx         TxRunner
	repo       repository.TransfertRepository
	depots     repository.DepotRepository
	registre   *RegistreDepot
	inventaire InventaireService
	cache      *StockCache
}

func NewTransfertService(
	tx TxRunner,
	repo repository.TransfertRepository,
	depots repository.DepotRepository,
	registre *RegistreDepot,
	inventaire InventaireService,
	cache *StockCache,
) TransfertService {
	return &transfertService{
		tx:         tx,
		repo:       repo,
		depots:     depots,
		registre:   registre,
		inventaire: inventaire,
		cache:      cache,
	}
}

type itemDemande struct {
	articleID uuid.UUID
	qte       decimal.Decimal
}

// ── Creer ─────────────────────────────────────────────────────────────────────

func (s *transfertService) Creer(ctx context.Context, req dto.TransfertRequest) (*dto.TransfertResponse, error) {
	source, destination, err := s.resoudreDepots(ctx, req)
	if err != nil {
		return nil, err
	}
	items, err := parseItems(req.Items)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.DateTransfert, "date_transfert")
	if err != nil {
		return nil, err
	}

	t := model.Transfert{
		ID:                 uuid.New(),
		DepotSourceID:      source.ID,
		DepotDestinationID: destination.ID,
		DepotSource:        source.Nom,
		DepotDestination:   destination.Nom,
		Statut:             model.TransfertEnCours,
		DateTransfert:      date,
		Notes:              req.Notes,
	}

	err = s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		if _, _, err := s.depotsTx(tx, source.ID, source.Nom, destination.ID, destination.Nom); err != nil {
			return err
		}
		numero, err := s.repo.NextNumeroTx(tx, time.Now().Year())
		if err != nil {
			return err
		}
		t.Numero = numero

		touches := make([]uuid.UUID, 0, len(items))
		for _, it := range items {
			art, err := s.appliquerTx(tx, source, destination, it.articleID, it.qte)
			if err != nil {
				return err
			}
			t.Items = append(t.Items, nouvelItem(t.ID, art, it.qte))
			touches = append(touches, it.articleID)
		}
		totaliserTransfert(&t)

		if err := s.registre.RecalculerTx(tx, touches, model.MouvementTransfert, refLabel("Transfert", t.Numero), &t.ID); err != nil {
			return err
		}
		t.Statut = model.TransfertTermine
		return s.repo.CreateTx(tx, &t)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalider(ctx, source.ID, destination.ID)
	log.Info().Str("numero", t.Numero).Str("source", source.Nom).Str("destination", destination.Nom).
		Int("items", len(t.Items)).Msg("transfert créé")
	return transfertToResponse(&t), nil
}

// ── Modifier ──────────────────────────────────────────────────────────────────

func (s *transfertService) Modifier(ctx context.Context, id uuid.UUID, req dto.TransfertRequest) (*dto.TransfertResponse, error) {
	source, destination, err := s.resoudreDepots(ctx, req)
	if err != nil {
		return nil, err
	}
	items, err := parseItems(req.Items)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.DateTransfert, "date_transfert")
	if err != nil {
		return nil, err
	}

	var t *model.Transfert
	var anciensDepots []uuid.UUID
	err = s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		t, err = s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "Transfert introuvable")
		}
		if t.Statut != model.TransfertEnCours {
			return apierror.Conflict("Le transfert %s est %s : seul un transfert en cours peut être modifié", t.Numero, t.Statut)
		}
		anciensDepots = []uuid.UUID{t.DepotSourceID, t.DepotDestinationID}
		ancienneSource, ancienneDestination, err := s.depotsTx(tx, t.DepotSourceID, t.DepotSource, t.DepotDestinationID, t.DepotDestination)
		if err != nil {
			return err
		}
		if _, _, err := s.depotsTx(tx, source.ID, source.Nom, destination.ID, destination.Nom); err != nil {
			return err
		}

		touches := make([]uuid.UUID, 0, len(t.Items)+len(items))
		for _, it := range t.Items {
			touches = append(touches, it.ArticleID)
		}
		for _, it := range items {
			touches = append(touches, it.articleID)
		}

		if t.DepotSourceID == source.ID && t.DepotDestinationID == destination.ID {
			if err := s.appliquerDiffTx(tx, t, source, destination, items); err != nil {
				return err
			}
		} else if err := s.remplacerTx(tx, t, ancienneSource, ancienneDestination, source, destination, items); err != nil {
			return err
		}

		t.DepotSourceID, t.DepotSource = source.ID, source.Nom
		t.DepotDestinationID, t.DepotDestination = destination.ID, destination.Nom
		t.DateTransfert = date
		t.Notes = req.Notes
		totaliserTransfert(t)

		if err := s.registre.RecalculerTx(tx, touches, model.MouvementTransfert, refLabel("Modification transfert", t.Numero), &t.ID); err != nil {
			return err
		}
		t.Statut = model.TransfertTermine
		return s.repo.UpdateTx(tx, t)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalider(ctx, append(anciensDepots, source.ID, destination.ID)...)
	log.Info().Str("numero", t.Numero).Msg("transfert modifié")
	return transfertToResponse(t), nil
}

// appliquerDiffTx moves only the net change per article between the stored
// items and the requested ones.
func (s *transfertService) appliquerDiffTx(tx *gorm.DB, t *model.Transfert, source, destination *model.Depot, items []itemDemande) error {
	d := diffParArticle(t.Items, items,
		func(it model.TransfertItem) uuid.UUID { return it.ArticleID },
		func(it itemDemande) uuid.UUID { return it.articleID })

	var conserves []model.TransfertItem
	for _, old := range d.supprimees {
		if err := s.annulerTx(tx, source, destination, old.ArticleID, old.Qte); err != nil {
			return err
		}
		if err := s.repo.DeleteItemTx(tx, old.ID); err != nil {
			return err
		}
	}
	for _, p := range d.conservees {
		delta := p.nouvelle.qte.Sub(p.ancienne.Qte)
		var art *model.Article
		var err error
		switch {
		case delta.IsPositive():
			art, err = s.appliquerTx(tx, source, destination, p.nouvelle.articleID, delta)
		case delta.IsNegative():
			if err = s.annulerTx(tx, source, destination, p.nouvelle.articleID, delta.Neg()); err == nil {
				art, err = s.inventaire.ArticleTx(tx, p.nouvelle.articleID)
			}
		default:
			art, err = s.inventaire.ArticleTx(tx, p.nouvelle.articleID)
		}
		if err != nil {
			return err
		}
		it := nouvelItem(t.ID, art, p.nouvelle.qte)
		it.ID = p.ancienne.ID
		if err := s.repo.UpdateItemTx(tx, &it); err != nil {
			return err
		}
		conserves = append(conserves, it)
	}
	for _, n := range d.ajoutees {
		art, err := s.appliquerTx(tx, source, destination, n.articleID, n.qte)
		if err != nil {
			return err
		}
		it := nouvelItem(t.ID, art, n.qte)
		if err := s.repo.CreateItemTx(tx, &it); err != nil {
			return err
		}
		conserves = append(conserves, it)
	}
	t.Items = conserves
	return nil
}

// remplacerTx reverses every stored item against the old depots and applies
// the requested items against the new ones.
func (s *transfertService) remplacerTx(tx *gorm.DB, t *model.Transfert, ancienneSource, ancienneDestination, source, destination *model.Depot, items []itemDemande) error {
	for _, old := range t.Items {
		if err := s.annulerTx(tx, ancienneSource, ancienneDestination, old.ArticleID, old.Qte); err != nil {
			return err
		}
		if err := s.repo.DeleteItemTx(tx, old.ID); err != nil {
			return err
		}
	}
	t.Items = nil
	for _, n := range items {
		art, err := s.appliquerTx(tx, source, destination, n.articleID, n.qte)
		if err != nil {
			return err
		}
		it := nouvelItem(t.ID, art, n.qte)
		if err := s.repo.CreateItemTx(tx, &it); err != nil {
			return err
		}
		t.Items = append(t.Items, it)
	}
	return nil
}

// ── ChangerStatut ─────────────────────────────────────────────────────────────

func (s *transfertService) ChangerStatut(ctx context.Context, id uuid.UUID, statut string) (*dto.TransfertResponse, error) {
	var t *model.Transfert
	var avant string
	err := s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		var err error
		t, err = s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "Transfert introuvable")
		}
		avant = t.Statut
		if avant == statut {
			return nil
		}

		source, destination, err := s.depotsTx(tx, t.DepotSourceID, t.DepotSource, t.DepotDestinationID, t.DepotDestination)
		if err != nil {
			return err
		}
		motif := refLabel("Statut transfert", t.Numero)

		switch {
		case statut == model.TransfertAnnule && (avant == model.TransfertEnCours || avant == model.TransfertTermine):
			if err := s.annulerItemsTx(tx, t, source, destination); err != nil {
				return err
			}
		case statut == model.TransfertTermine && avant == model.TransfertAnnule:
			for _, it := range t.Items {
				if _, err := s.appliquerTx(tx, source, destination, it.ArticleID, it.Qte); err != nil {
					return err
				}
			}
		case statut == model.TransfertTermine && avant == model.TransfertEnCours,
			statut == model.TransfertEnCours && avant == model.TransfertTermine:
			t.Statut = statut
			return s.repo.UpdateTx(tx, t)
		case statut == model.TransfertEnCours && avant == model.TransfertAnnule:
			return apierror.Conflict("Un transfert annulé ne peut pas repasser en cours")
		default:
			return apierror.Validation("Statut de transfert inconnu : %s", statut)
		}

		if err := s.registre.RecalculerTx(tx, itemArticles(t.Items), model.MouvementTransfert, motif, &t.ID); err != nil {
			return err
		}
		t.Statut = statut
		return s.repo.UpdateTx(tx, t)
	})
	if err != nil {
		return nil, err
	}

	if avant != statut {
		s.cache.Invalider(ctx, t.DepotSourceID, t.DepotDestinationID)
		log.Info().Str("numero", t.Numero).Str("de", avant).Str("vers", statut).Msg("statut transfert modifié")
	}
	return transfertToResponse(t), nil
}

// ── Supprimer ─────────────────────────────────────────────────────────────────

func (s *transfertService) Supprimer(ctx context.Context, id uuid.UUID) error {
	var t *model.Transfert
	err := s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		var err error
		t, err = s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "Transfert introuvable")
		}
		if t.Statut != model.TransfertEnCours {
			return apierror.Conflict("Le transfert %s est %s : seul un transfert en cours peut être supprimé", t.Numero, t.Statut)
		}
		source, destination, err := s.depotsTx(tx, t.DepotSourceID, t.DepotSource, t.DepotDestinationID, t.DepotDestination)
		if err != nil {
			return err
		}
		if err := s.annulerItemsTx(tx, t, source, destination); err != nil {
			return err
		}
		if err := s.registre.RecalculerTx(tx, itemArticles(t.Items), model.MouvementTransfert, refLabel("Suppression transfert", t.Numero), &t.ID); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, t.ID)
	})
	if err != nil {
		return err
	}
	s.cache.Invalider(ctx, t.DepotSourceID, t.DepotDestinationID)
	log.Info().Str("numero", t.Numero).Msg("transfert supprimé")
	return nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *transfertService) Obtenir(ctx context.Context, id uuid.UUID) (*dto.TransfertResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Transfert introuvable")
	}
	return transfertToResponse(t), nil
}

func (s *transfertService) Lister(ctx context.Context, filter dto.TransfertFilter) (*dto.Page[dto.TransfertResponse], error) {
	depotID, err := parseOptionalID(&filter.DepotID, "depot_id")
	if err != nil {
		return nil, err
	}
	rows, total, err := s.repo.List(ctx, repository.TransfertFilter{
		Statut: filter.Statut, DepotID: depotID, Page: filter.Page, Limit: filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	data := make([]dto.TransfertResponse, 0, len(rows))
	for i := range rows {
		data = append(data, *transfertToResponse(&rows[i]))
	}
	return dto.NewPage(data, total, filter.Page, filter.Limit), nil
}

func (s *transfertService) ProchainNumero(ctx context.Context) (*dto.NumeroResponse, error) {
	n, err := s.repo.NextNumero(ctx, time.Now().Year())
	if err != nil {
		return nil, err
	}
	return &dto.NumeroResponse{Numero: n}, nil
}

// ── Stock moves ───────────────────────────────────────────────────────────────

// appliquerTx checks the source holds qte of the article, then moves it to
// the destination.
func (s *transfertService) appliquerTx(tx *gorm.DB, source, destination *model.Depot, articleID uuid.UUID, qte decimal.Decimal) (*model.Article, error) {
	art, err := s.inventaire.ArticleTx(tx, articleID)
	if err != nil {
		return nil, err
	}
	disponible, err := s.registre.DisponibleTx(tx, articleID, source.ID)
	if err != nil {
		return nil, err
	}
	if disponible.LessThan(qte) {
		return nil, apierror.Validation("Stock insuffisant pour l'article %s dans le dépôt %s : disponible %s, demandé %s",
			art.Reference, source.Nom, disponible.String(), qte.String())
	}
	if _, err := s.registre.AjusterTx(tx, articleID, source.ID, qte.Neg()); err != nil {
		return nil, err
	}
	if _, err := s.registre.AjusterTx(tx, articleID, destination.ID, qte); err != nil {
		return nil, err
	}
	return art, nil
}

// annulerTx credits the source and debits the destination. A destination
// row that no longer holds qte is dropped rather than driven negative.
func (s *transfertService) annulerTx(tx *gorm.DB, source, destination *model.Depot, articleID uuid.UUID, qte decimal.Decimal) error {
	if _, err := s.registre.AjusterTx(tx, articleID, source.ID, qte); err != nil {
		return err
	}
	reste, err := s.registre.AjusterTx(tx, articleID, destination.ID, qte.Neg())
	if err != nil {
		return err
	}
	if reste.IsNegative() {
		log.Warn().Str("article", articleID.String()).Str("depot", destination.Nom).
			Str("manquant", reste.Neg().String()).Msg("annulation transfert: stock destination insuffisant")
	}
	return nil
}

func (s *transfertService) annulerItemsTx(tx *gorm.DB, t *model.Transfert, source, destination *model.Depot) error {
	for _, it := range t.Items {
		if err := s.annulerTx(tx, source, destination, it.ArticleID, it.Qte); err != nil {
			return err
		}
	}
	return nil
}

// depotsTx re-reads both depots under a share lock. A transfer whose depot
// has been deleted can no longer move stock.
func (s *transfertService) depotsTx(tx *gorm.DB, sourceID uuid.UUID, sourceNom string, destinationID uuid.UUID, destinationNom string) (*model.Depot, *model.Depot, error) {
	source, err := s.depotTx(tx, sourceID, sourceNom)
	if err != nil {
		return nil, nil, err
	}
	destination, err := s.depotTx(tx, destinationID, destinationNom)
	if err != nil {
		return nil, nil, err
	}
	return source, destination, nil
}

func (s *transfertService) depotTx(tx *gorm.DB, id uuid.UUID, nom string) (*model.Depot, error) {
	d, err := s.depots.FindByIDTx(tx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Conflict("Le dépôt %s n'existe plus", nom)
	}
	return d, err
}

func (s *transfertService) resoudreDepots(ctx context.Context, req dto.TransfertRequest) (*model.Depot, *model.Depot, error) {
	source, err := s.resoudreDepot(ctx, req.DepotSourceID, req.DepotSource, "depot_source")
	if err != nil {
		return nil, nil, err
	}
	destination, err := s.resoudreDepot(ctx, req.DepotDestinationID, req.DepotDestination, "depot_destination")
	if err != nil {
		return nil, nil, err
	}
	if source.ID == destination.ID {
		return nil, nil, apierror.Validation("Le dépôt source et le dépôt destination doivent être différents")
	}
	return source, destination, nil
}

// resoudreDepot resolves a depot reference given by id or by name.
func (s *transfertService) resoudreDepot(ctx context.Context, id *string, nom, champ string) (*model.Depot, error) {
	depotID, err := parseOptionalID(id, champ+"_id")
	if err != nil {
		return nil, err
	}
	switch {
	case depotID != nil:
		d, err := s.depots.FindByID(ctx, *depotID)
		if err != nil {
			return nil, notFound(err, "Dépôt %s introuvable", depotID)
		}
		return d, nil
	case nom != "":
		d, err := s.depots.FindByNom(ctx, nom)
		if err != nil {
			return nil, notFound(err, "Dépôt %q introuvable", nom)
		}
		return d, nil
	default:
		return nil, apierror.Validation("%s requis", champ)
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func parseItems(req []dto.TransfertItemRequest) ([]itemDemande, error) {
	if len(req) == 0 {
		return nil, apierror.Validation("Le transfert doit contenir au moins un article")
	}
	items := make([]itemDemande, 0, len(req))
	ids := make([]uuid.UUID, 0, len(req))
	for _, r := range req {
		id, err := parseID(r.ArticleID, "article_id")
		if err != nil {
			return nil, err
		}
		if !r.Qte.IsPositive() {
			return nil, apierror.Validation("La quantité transférée doit être positive")
		}
		items = append(items, itemDemande{articleID: id, qte: r.Qte})
		ids = append(ids, id)
	}
	return items, uniqueArticles(ids)
}

// nouvelItem snapshots the article's purchase price and TVA rate.
func nouvelItem(transfertID uuid.UUID, art *model.Article, qte decimal.Decimal) model.TransfertItem {
	ht := qte.Mul(art.PrixAchatHT).Round(3)
	ttc := ht.Add(ht.Mul(art.TVA).Div(cent)).Round(3)
	return model.TransfertItem{
		ID:             uuid.New(),
		TransfertID:    transfertID,
		ArticleID:      art.ID,
		Qte:            qte,
		PrixUnitaireHT: art.PrixAchatHT,
		TVA:            art.TVA,
		TotalHT:        ht,
		TotalTTC:       ttc,
		Article:        art,
	}
}

func totaliserTransfert(t *model.Transfert) {
	t.TotalHT, t.TotalTTC = decimal.Zero, decimal.Zero
	for _, it := range t.Items {
		t.TotalHT = t.TotalHT.Add(it.TotalHT)
		t.TotalTTC = t.TotalTTC.Add(it.TotalTTC)
	}
	t.TotalTVA = t.TotalTTC.Sub(t.TotalHT)
}

func itemArticles(items []model.TransfertItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ArticleID)
	}
	return ids
}

func transfertToResponse(t *model.Transfert) *dto.TransfertResponse {
	resp := &dto.TransfertResponse{
		ID:                 t.ID.String(),
		Numero:             t.Numero,
		DepotSourceID:      t.DepotSourceID.String(),
		DepotSource:        t.DepotSource,
		DepotDestinationID: t.DepotDestinationID.String(),
		DepotDestination:   t.DepotDestination,
		Statut:             t.Statut,
		TotalHT:            t.TotalHT,
		TotalTVA:           t.TotalTVA,
		TotalTTC:           t.TotalTTC,
		DateTransfert:      t.DateTransfert.Format(dateLayout),
		Notes:              t.Notes,
		Items:              make([]dto.TransfertItemResponse, 0, len(t.Items)),
	}
	for _, it := range t.Items {
		r := dto.TransfertItemResponse{
			ID:             it.ID.String(),
			ArticleID:      it.ArticleID.String(),
			Qte:            it.Qte,
			PrixUnitaireHT: it.PrixUnitaireHT,
			TVA:            it.TVA,
			TotalHT:        it.TotalHT,
			TotalTTC:       it.TotalTTC,
		}
		if it.Article != nil {
			r.Article = it.Article.Designation
		}
		resp.Items = append(resp.Items, r)
	}
	return resp
}
