package service

import (
	"context"
	"time"

	"gescom/internal/apierror"
	"gescom/internal/dto"
	"gescom/internal/model"
	"gescom/internal/repository"
	"gescom/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BonCommandeService manages supplier purchase orders. A confirmed order
// reserves its quantities on Article.QteVirtual until it is cancelled or
// received.
type BonCommandeService interface {
	Creer(ctx context.Context, req dto.BonCommandeRequest) (*dto.BonCommandeResponse, error)
	Modifier(ctx context.Context, id uuid.UUID, req dto.BonCommandeRequest) (*dto.BonCommandeResponse, error)
	Annuler(ctx context.Context, id uuid.UUID) (*dto.BonCommandeResponse, error)
	Supprimer(ctx context.Context, id uuid.UUID) error
	Obtenir(ctx context.Context, id uuid.UUID) (*dto.BonCommandeResponse, error)
	Lister(ctx context.Context, filter dto.DocumentFilter) (*dto.Page[dto.BonCommandeResponse], error)
	ProchainNumero(ctx context.Context) (*dto.NumeroResponse, error)
	Envoyer(ctx context.Context, id uuid.UUID, email string) error
}

type bonCommandeService struct {
	tx           TxRunner
	repo         repository.BonCommandeRepository
	receptions   repository.BonReceptionRepository
	fournisseurs repository.FournisseurRepository
	inventaire   InventaireService
	dispatcher   *worker.Dispatcher
}

func NewBonCommandeService(
	tx TxRunner,
	repo repository.BonCommandeRepository,
	receptions repository.BonReceptionRepository,
	fournisseurs repository.FournisseurRepository,
	inventaire InventaireService,
	dispatcher *worker.Dispatcher,
) BonCommandeService {
	return &bonCommandeService{
		tx:           tx,
		repo:         repo,
		receptions:   receptions,
		fournisseurs: fournisseurs,
		inventaire:   inventaire,
		dispatcher:   dispatcher,
	}
}

type ligneCommande struct {
	articleID    uuid.UUID
	quantite     decimal.Decimal
	prixUnitaire decimal.Decimal
	tva          *decimal.Decimal
	tauxFodec    *decimal.Decimal
}

// modele builds the stored line; unset rates fall back to the article's.
func (l ligneCommande) modele(bonID uuid.UUID, art *model.Article) model.BonCommandeLigne {
	return model.BonCommandeLigne{
		ID:            uuid.New(),
		BonCommandeID: bonID,
		ArticleID:     l.articleID,
		Quantite:      l.quantite,
		QuantiteRecue: decimal.Zero,
		PrixUnitaire:  l.prixUnitaire,
		TVA:           decimalOr(l.tva, art.TVA),
		TauxFodec:     decimalOr(l.tauxFodec, art.TauxFodec),
		Article:       art,
	}
}

// ── Creer ─────────────────────────────────────────────────────────────────────

func (s *bonCommandeService) Creer(ctx context.Context, req dto.BonCommandeRequest) (*dto.BonCommandeResponse, error) {
	entete, lignes, err := s.preparer(ctx, req)
	if err != nil {
		return nil, err
	}
	bc := entete
	bc.ID = uuid.New()
	bc.Statut = model.StatutConfirme

	err = s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumeroTx(tx, time.Now().Year())
		if err != nil {
			return err
		}
		bc.NumeroCommande = numero
		motif := refLabel("Commande fournisseur", numero)

		for _, l := range lignes {
			art, err := s.inventaire.AjusterTx(tx, mouvementVirtuel(l.articleID, l.quantite, motif, bc.ID))
			if err != nil {
				return err
			}
			bc.Lignes = append(bc.Lignes, l.modele(bc.ID, art))
		}
		bc.Totaux = totauxCommande(bc.Lignes, bc.RemiseType, bc.Remise)
		return s.repo.CreateTx(tx, &bc)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("numero", bc.NumeroCommande).Int("lignes", len(bc.Lignes)).Msg("bon de commande créé")
	return bonCommandeToResponse(&bc), nil
}

// ── Modifier ──────────────────────────────────────────────────────────────────

func (s *bonCommandeService) Modifier(ctx context.Context, id uuid.UUID, req dto.BonCommandeRequest) (*dto.BonCommandeResponse, error) {
	entete, lignes, err := s.preparer(ctx, req)
	if err != nil {
		return nil, err
	}

	var bc *model.BonCommande
	err = s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		bc, err = s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "Bon de commande introuvable")
		}
		if bc.Statut == model.StatutAnnule {
			return apierror.Conflict("Le bon de commande %s est annulé", bc.NumeroCommande)
		}
		for _, l := range bc.Lignes {
			if l.QuantiteRecue.IsPositive() {
				return apierror.Conflict("Le bon de commande %s a déjà été partiellement reçu", bc.NumeroCommande)
			}
		}
		motif := refLabel("Modification commande fournisseur", bc.NumeroCommande)

		d := diffParArticle(bc.Lignes, lignes,
			func(l model.BonCommandeLigne) uuid.UUID { return l.ArticleID },
			func(l ligneCommande) uuid.UUID { return l.articleID })

		var resultat []model.BonCommandeLigne
		for _, old := range d.supprimees {
			if _, err := s.inventaire.AjusterTx(tx, mouvementVirtuel(old.ArticleID, old.Quantite.Neg(), motif, bc.ID)); err != nil {
				return err
			}
			if err := s.repo.DeleteLigneTx(tx, old.ID); err != nil {
				return err
			}
		}
		for _, p := range d.conservees {
			delta := p.nouvelle.quantite.Sub(p.ancienne.Quantite)
			art, err := s.inventaire.AjusterTx(tx, mouvementVirtuel(p.nouvelle.articleID, delta, motif, bc.ID))
			if err != nil {
				return err
			}
			l := p.nouvelle.modele(bc.ID, art)
			l.ID = p.ancienne.ID
			if err := s.repo.UpdateLigneTx(tx, &l); err != nil {
				return err
			}
			resultat = append(resultat, l)
		}
		for _, n := range d.ajoutees {
			art, err := s.inventaire.AjusterTx(tx, mouvementVirtuel(n.articleID, n.quantite, motif, bc.ID))
			if err != nil {
				return err
			}
			l := n.modele(bc.ID, art)
			if err := s.repo.CreateLigneTx(tx, &l); err != nil {
				return err
			}
			resultat = append(resultat, l)
		}

		bc.FournisseurID = entete.FournisseurID
		bc.Fournisseur = entete.Fournisseur
		bc.DateCommande = entete.DateCommande
		bc.RemiseType = entete.RemiseType
		bc.Remise = entete.Remise
		bc.Notes = entete.Notes
		bc.Lignes = resultat
		bc.Totaux = totauxCommande(bc.Lignes, bc.RemiseType, bc.Remise)
		return s.repo.UpdateTx(tx, bc)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("numero", bc.NumeroCommande).Msg("bon de commande modifié")
	return bonCommandeToResponse(bc), nil
}

// ── Annuler / Supprimer ───────────────────────────────────────────────────────

// Annuler releases the reservation still held by each line.
func (s *bonCommandeService) Annuler(ctx context.Context, id uuid.UUID) (*dto.BonCommandeResponse, error) {
	var bc *model.BonCommande
	err := s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		var err error
		bc, err = s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "Bon de commande introuvable")
		}
		if bc.Statut == model.StatutAnnule {
			return apierror.Conflict("Le bon de commande %s est déjà annulé", bc.NumeroCommande)
		}
		motif := refLabel("Annulation commande fournisseur", bc.NumeroCommande)
		for _, l := range bc.Lignes {
			restant := l.Restant()
			if !restant.IsPositive() {
				continue
			}
			if _, err := s.inventaire.AjusterTx(tx, mouvementVirtuel(l.ArticleID, restant.Neg(), motif, bc.ID)); err != nil {
				return err
			}
		}
		bc.Statut = model.StatutAnnule
		return s.repo.UpdateTx(tx, bc)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("numero", bc.NumeroCommande).Msg("bon de commande annulé")
	return bonCommandeToResponse(bc), nil
}

func (s *bonCommandeService) Supprimer(ctx context.Context, id uuid.UUID) error {
	return s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		bc, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "Bon de commande introuvable")
		}
		if bc.Statut != model.StatutAnnule && bc.Statut != model.StatutBrouillon {
			return apierror.Conflict("Le bon de commande %s doit être annulé avant suppression", bc.NumeroCommande)
		}
		n, err := s.receptions.CountByBonCommandeTx(tx, bc.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apierror.Conflict("Le bon de commande %s est référencé par %d bon(s) de réception", bc.NumeroCommande, n)
		}
		return s.repo.DeleteTx(tx, bc.ID)
	})
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *bonCommandeService) Obtenir(ctx context.Context, id uuid.UUID) (*dto.BonCommandeResponse, error) {
	bc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Bon de commande introuvable")
	}
	return bonCommandeToResponse(bc), nil
}

func (s *bonCommandeService) Lister(ctx context.Context, filter dto.DocumentFilter) (*dto.Page[dto.BonCommandeResponse], error) {
	f, err := documentFilter(filter)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.BonCommandeResponse, 0, len(rows))
	for i := range rows {
		data = append(data, *bonCommandeToResponse(&rows[i]))
	}
	return dto.NewPage(data, total, filter.Page, filter.Limit), nil
}

func (s *bonCommandeService) ProchainNumero(ctx context.Context) (*dto.NumeroResponse, error) {
	n, err := s.repo.NextNumero(ctx, time.Now().Year())
	if err != nil {
		return nil, err
	}
	return &dto.NumeroResponse{Numero: n}, nil
}

func (s *bonCommandeService) Envoyer(ctx context.Context, id uuid.UUID, email string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "Bon de commande introuvable")
	}
	return envoyerDocument(ctx, s.dispatcher, worker.DocumentBonCommande, id, email)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// preparer validates the request outside any transaction: supplier, discount
// and lines.
func (s *bonCommandeService) preparer(ctx context.Context, req dto.BonCommandeRequest) (model.BonCommande, []ligneCommande, error) {
	var bc model.BonCommande
	fournisseurID, err := parseID(req.FournisseurID, "fournisseur_id")
	if err != nil {
		return bc, nil, err
	}
	f, err := s.fournisseurs.FindByID(ctx, fournisseurID)
	if err != nil {
		return bc, nil, notFound(err, "Fournisseur introuvable")
	}
	date, err := parseDate(req.DateCommande, "date_commande")
	if err != nil {
		return bc, nil, err
	}
	remiseType := req.RemiseType
	if remiseType == "" {
		remiseType = model.RemisePourcentage
	}
	if remiseType != model.RemisePourcentage && remiseType != model.RemiseFixe {
		return bc, nil, apierror.Validation("remise_type doit valoir %s ou %s", model.RemisePourcentage, model.RemiseFixe)
	}
	if req.Remise.IsNegative() {
		return bc, nil, apierror.Validation("La remise ne peut pas être négative")
	}
	if len(req.Lignes) == 0 {
		return bc, nil, apierror.Validation("Le bon de commande doit contenir au moins une ligne")
	}

	lignes := make([]ligneCommande, 0, len(req.Lignes))
	ids := make([]uuid.UUID, 0, len(req.Lignes))
	for _, l := range req.Lignes {
		articleID, err := parseID(l.ArticleID, "article_id")
		if err != nil {
			return bc, nil, err
		}
		if !l.Quantite.IsPositive() {
			return bc, nil, apierror.Validation("La quantité doit être positive")
		}
		if l.PrixUnitaire == nil || l.PrixUnitaire.IsNegative() {
			return bc, nil, apierror.Validation("prix_unitaire requis pour chaque ligne")
		}
		lignes = append(lignes, ligneCommande{
			articleID:    articleID,
			quantite:     l.Quantite,
			prixUnitaire: *l.PrixUnitaire,
			tva:          l.TVA,
			tauxFodec:    l.TauxFodec,
		})
		ids = append(ids, articleID)
	}
	if err := uniqueArticles(ids); err != nil {
		return bc, nil, err
	}

	bc = model.BonCommande{
		FournisseurID: f.ID,
		Fournisseur:   f,
		DateCommande:  date,
		RemiseType:    remiseType,
		Remise:        req.Remise,
		Notes:         req.Notes,
	}
	return bc, lignes, nil
}

func totauxCommande(lignes []model.BonCommandeLigne, remiseType string, remise decimal.Decimal) model.Totaux {
	montants := make([]montantLigne, 0, len(lignes))
	for _, l := range lignes {
		montants = append(montants, montantLigne{
			Quantite:     l.Quantite,
			PrixUnitaire: l.PrixUnitaire,
			TauxFodec:    l.TauxFodec,
			TVA:          l.TVA,
		})
	}
	return calculerTotaux(montants, remiseType, remise)
}

// statutReception derives a purchase order status from the received quantities.
func statutReception(lignes []model.BonCommandeLigne) string {
	total, recu := decimal.Zero, decimal.Zero
	for _, l := range lignes {
		total = total.Add(l.Quantite)
		recu = recu.Add(l.QuantiteRecue)
	}
	switch {
	case recu.IsPositive() && recu.GreaterThanOrEqual(total):
		return model.StatutRecu
	case recu.IsPositive():
		return model.StatutPartiellementRecu
	default:
		return model.StatutConfirme
	}
}

func bonCommandeToResponse(bc *model.BonCommande) *dto.BonCommandeResponse {
	resp := &dto.BonCommandeResponse{
		ID:             bc.ID.String(),
		NumeroCommande: bc.NumeroCommande,
		FournisseurID:  bc.FournisseurID.String(),
		DateCommande:   bc.DateCommande.Format(dateLayout),
		Statut:         bc.Statut,
		RemiseType:     bc.RemiseType,
		Remise:         bc.Remise,
		Totaux:         totauxToResponse(bc.Totaux),
		Notes:          bc.Notes,
		Lignes:         make([]dto.LigneBonCommandeResponse, 0, len(bc.Lignes)),
	}
	if bc.Fournisseur != nil {
		resp.Fournisseur = bc.Fournisseur.RaisonSociale
	}
	for _, l := range bc.Lignes {
		r := dto.LigneBonCommandeResponse{
			ID:            l.ID.String(),
			ArticleID:     l.ArticleID.String(),
			Quantite:      l.Quantite,
			QuantiteRecue: l.QuantiteRecue,
			PrixUnitaire:  l.PrixUnitaire,
			TVA:           l.TVA,
			TauxFodec:     l.TauxFodec,
		}
		if l.Article != nil {
			r.Article = l.Article.Designation
		}
		resp.Lignes = append(resp.Lignes, r)
	}
	return resp
}
