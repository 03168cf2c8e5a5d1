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

// LivraisonService manages delivery notes. Every line takes its quantity out
// of qte and qte_physique. With synchroniser set, a note issued for a client
// order also credits the order lines' quantite_livree without moving stock
// a second time.
type LivraisonService interface {
	Creer(ctx context.Context, req dto.CreerLivraisonRequest) (*dto.LivraisonResponse, error)
	Modifier(ctx context.Context, id uuid.UUID, req dto.ModifierLivraisonRequest) (*dto.LivraisonResponse, error)
	Annuler(ctx context.Context, id uuid.UUID) (*dto.LivraisonResponse, error)
	Supprimer(ctx context.Context, id uuid.UUID) error
	Obtenir(ctx context.Context, id uuid.UUID) (*dto.LivraisonResponse, error)
	Lister(ctx context.Context, filter dto.DocumentFilter) (*dto.Page[dto.LivraisonResponse], error)
	ProchainNumero(ctx context.Context) (*dto.NumeroResponse, error)
	Envoyer(ctx context.Context, id uuid.UUID, email string) error
}

type livraisonService struct {
	tx           TxRunner
	repo         repository.BonLivraisonRepository
	commandes    repository.BonCommandeClientRepository
	clients      repository.ClientRepository
	inventaire   InventaireService
	dispatcher   *worker.Dispatcher
	synchroniser bool
}

func NewLivraisonService(
	tx TxRunner,
	repo repository.BonLivraisonRepository,
	commandes repository.BonCommandeClientRepository,
	clients repository.ClientRepository,
	inventaire InventaireService,
	dispatcher *worker.Dispatcher,
	synchroniser bool,
) LivraisonService {
	return &livraisonService{
		tx:           tx,
		repo:         repo,
		commandes:    commandes,
		clients:      clients,
		inventaire:   inventaire,
		dispatcher:   dispatcher,
		synchroniser: synchroniser,
	}
}

type ligneLivraison struct {
	articleID    uuid.UUID
	quantite     decimal.Decimal
	prixUnitaire *decimal.Decimal
	tva          *decimal.Decimal
	remise       decimal.Decimal
}

// modele prices the line from the article when the request leaves it out.
func (l ligneLivraison) modele(bonID uuid.UUID, art *model.Article) model.BonLivraisonLigne {
	return model.BonLivraisonLigne{
		ID:              uuid.New(),
		BonLivraisonID:  bonID,
		ArticleID:       l.articleID,
		Quantite:        l.quantite,
		QuantiteImputee: decimal.Zero,
		PrixUnitaire:    decimalOr(l.prixUnitaire, art.PrixVenteHT),
		TVA:             decimalOr(l.tva, art.TVA),
		Remise:          l.remise,
		Article:         art,
	}
}

// ── Creer ─────────────────────────────────────────────────────────────────────

func (s *livraisonService) Creer(ctx context.Context, req dto.CreerLivraisonRequest) (*dto.LivraisonResponse, error) {
	commandeID, err := parseOptionalID(req.BonCommandeClientID, "bon_commande_client_id")
	if err != nil {
		return nil, err
	}
	clientID, err := parseOptionalID(req.ClientID, "client_id")
	if err != nil {
		return nil, err
	}
	vendeurID, err := parseOptionalID(req.VendeurID, "vendeur_id")
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.DateLivraison, "date_livraison")
	if err != nil {
		return nil, err
	}
	lignes, err := parseLignesLivraison(req.Lignes)
	if err != nil {
		return nil, err
	}

	bl := model.BonLivraison{
		ID:                  uuid.New(),
		BonCommandeClientID: commandeID,
		VendeurID:           vendeurID,
		DateLivraison:       date,
		Statut:              model.StatutLivraisonLivree,
		Notes:               req.Notes,
	}
	if commandeID == nil {
		if clientID == nil {
			return nil, apierror.Validation("client_id requis pour une livraison sans commande")
		}
		c, err := s.clients.FindByID(ctx, *clientID)
		if err != nil {
			return nil, notFound(err, "Client introuvable")
		}
		bl.ClientID, bl.Client = &c.ID, c
	}

	err = s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		var commande *model.BonCommandeClient
		if commandeID != nil {
			var err error
			commande, err = s.commandes.FindForUpdateTx(tx, *commandeID)
			if err != nil {
				return notFound(err, "Commande client introuvable")
			}
			if commande.Statut == model.StatutAnnule {
				return apierror.Conflict("La commande %s est annulée", commande.NumeroCommande)
			}
			bl.ClientID = commande.ClientID
			bl.ClientWebsiteID = commande.ClientWebsiteID
			if commande.VendeurID != nil {
				bl.VendeurID = commande.VendeurID
			}
			bl.BonCommandeClient = commande
		}

		numero, err := s.repo.NextNumeroTx(tx, time.Now().Year())
		if err != nil {
			return err
		}
		bl.NumeroLivraison = numero
		motif := refLabel("Livraison", numero)

		for _, l := range lignes {
			art, err := s.inventaire.AjusterTx(tx, mouvementPhysique(l.articleID, l.quantite.Neg(), model.MouvementLivraison, motif, bl.ID))
			if err != nil {
				return err
			}
			ligne := l.modele(bl.ID, art)
			ligne.QuantiteImputee = s.imputer(commande, ligne.ArticleID, ligne.Quantite)
			bl.Lignes = append(bl.Lignes, ligne)
		}
		if s.synchroniser {
			if err := s.enregistrerCommandeTx(tx, commande); err != nil {
				return err
			}
		}
		bl.Totaux = totauxLivraison(bl.Lignes)
		return s.repo.CreateTx(tx, &bl)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("numero", bl.NumeroLivraison).Int("lignes", len(bl.Lignes)).Msg("bon de livraison créé")
	return livraisonToResponse(&bl), nil
}

// ── Modifier ──────────────────────────────────────────────────────────────────

func (s *livraisonService) Modifier(ctx context.Context, id uuid.UUID, req dto.ModifierLivraisonRequest) (*dto.LivraisonResponse, error) {
	lignes, err := parseLignesLivraison(req.Lignes)
	if err != nil {
		return nil, err
	}
	var date *time.Time
	if req.DateLivraison != "" {
		d, err := parseDate(req.DateLivraison, "date_livraison")
		if err != nil {
			return nil, err
		}
		date = &d
	}

	var bl *model.BonLivraison
	err = s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		bl, err = s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "Bon de livraison introuvable")
		}
		if bl.Statut == model.StatutAnnule {
			return apierror.Conflict("Le bon de livraison %s est annulé", bl.NumeroLivraison)
		}
		motif := refLabel("Modification livraison", bl.NumeroLivraison)

		commande, err := s.commandeLieeTx(tx, bl)
		if err != nil {
			return err
		}
		for i := range bl.Lignes {
			s.desimputer(commande, bl.Lignes[i].ArticleID, bl.Lignes[i].QuantiteImputee)
			bl.Lignes[i].QuantiteImputee = decimal.Zero
		}

		d := diffParArticle(bl.Lignes, lignes,
			func(l model.BonLivraisonLigne) uuid.UUID { return l.ArticleID },
			func(l ligneLivraison) uuid.UUID { return l.articleID })

		var resultat []model.BonLivraisonLigne
		for _, old := range d.supprimees {
			if _, err := s.inventaire.AjusterTx(tx, mouvementPhysique(old.ArticleID, old.Quantite, model.MouvementLivraison, motif, bl.ID)); err != nil {
				return err
			}
			if err := s.repo.DeleteLigneTx(tx, old.ID); err != nil {
				return err
			}
		}
		for _, p := range d.conservees {
			delta := p.nouvelle.quantite.Sub(p.ancienne.Quantite)
			art, err := s.inventaire.AjusterTx(tx, mouvementPhysique(p.nouvelle.articleID, delta.Neg(), model.MouvementLivraison, motif, bl.ID))
			if err != nil {
				return err
			}
			l := p.nouvelle.modele(bl.ID, art)
			l.ID = p.ancienne.ID
			l.QuantiteImputee = s.imputer(commande, l.ArticleID, l.Quantite)
			if err := s.repo.UpdateLigneTx(tx, &l); err != nil {
				return err
			}
			resultat = append(resultat, l)
		}
		for _, n := range d.ajoutees {
			art, err := s.inventaire.AjusterTx(tx, mouvementPhysique(n.articleID, n.quantite.Neg(), model.MouvementLivraison, motif, bl.ID))
			if err != nil {
				return err
			}
			l := n.modele(bl.ID, art)
			l.QuantiteImputee = s.imputer(commande, l.ArticleID, l.Quantite)
			if err := s.repo.CreateLigneTx(tx, &l); err != nil {
				return err
			}
			resultat = append(resultat, l)
		}
		if err := s.enregistrerCommandeTx(tx, commande); err != nil {
			return err
		}

		if date != nil {
			bl.DateLivraison = *date
		}
		if req.Notes != nil {
			bl.Notes = req.Notes
		}
		bl.Lignes = resultat
		bl.Totaux = totauxLivraison(bl.Lignes)
		return s.repo.UpdateTx(tx, bl)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("numero", bl.NumeroLivraison).Msg("bon de livraison modifié")
	return livraisonToResponse(bl), nil
}

// ── Annuler / Supprimer ───────────────────────────────────────────────────────

// Annuler puts every delivered quantity back into stock.
func (s *livraisonService) Annuler(ctx context.Context, id uuid.UUID) (*dto.LivraisonResponse, error) {
	var bl *model.BonLivraison
	err := s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		var err error
		bl, err = s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "Bon de livraison introuvable")
		}
		if bl.Statut == model.StatutAnnule {
			return apierror.Conflict("Le bon de livraison %s est déjà annulé", bl.NumeroLivraison)
		}
		if err := s.restituerTx(tx, bl, refLabel("Annulation livraison", bl.NumeroLivraison)); err != nil {
			return err
		}
		bl.Statut = model.StatutAnnule
		return s.repo.UpdateTx(tx, bl)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("numero", bl.NumeroLivraison).Msg("bon de livraison annulé")
	return livraisonToResponse(bl), nil
}

// Supprimer restores stock unless the note was cancelled, which already did.
func (s *livraisonService) Supprimer(ctx context.Context, id uuid.UUID) error {
	var numero string
	err := s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		bl, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "Bon de livraison introuvable")
		}
		numero = bl.NumeroLivraison
		if bl.Statut != model.StatutAnnule {
			if err := s.restituerTx(tx, bl, refLabel("Suppression livraison", bl.NumeroLivraison)); err != nil {
				return err
			}
		}
		return s.repo.DeleteTx(tx, bl.ID)
	})
	if err != nil {
		return err
	}
	log.Info().Str("numero", numero).Msg("bon de livraison supprimé")
	return nil
}

func (s *livraisonService) restituerTx(tx *gorm.DB, bl *model.BonLivraison, motif string) error {
	commande, err := s.commandeLieeTx(tx, bl)
	if err != nil {
		return err
	}
	for i := range bl.Lignes {
		l := &bl.Lignes[i]
		if _, err := s.inventaire.AjusterTx(tx, mouvementPhysique(l.ArticleID, l.Quantite, model.MouvementLivraison, motif, bl.ID)); err != nil {
			return err
		}
		if l.QuantiteImputee.IsPositive() {
			s.desimputer(commande, l.ArticleID, l.QuantiteImputee)
			l.QuantiteImputee = decimal.Zero
			if err := s.repo.UpdateLigneTx(tx, l); err != nil {
				return err
			}
		}
	}
	return s.enregistrerCommandeTx(tx, commande)
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *livraisonService) Obtenir(ctx context.Context, id uuid.UUID) (*dto.LivraisonResponse, error) {
	bl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Bon de livraison introuvable")
	}
	return livraisonToResponse(bl), nil
}

func (s *livraisonService) Lister(ctx context.Context, filter dto.DocumentFilter) (*dto.Page[dto.LivraisonResponse], error) {
	f, err := documentFilter(filter)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.LivraisonResponse, 0, len(rows))
	for i := range rows {
		data = append(data, *livraisonToResponse(&rows[i]))
	}
	return dto.NewPage(data, total, filter.Page, filter.Limit), nil
}

func (s *livraisonService) ProchainNumero(ctx context.Context) (*dto.NumeroResponse, error) {
	n, err := s.repo.NextNumero(ctx, time.Now().Year())
	if err != nil {
		return nil, err
	}
	return &dto.NumeroResponse{Numero: n}, nil
}

func (s *livraisonService) Envoyer(ctx context.Context, id uuid.UUID, email string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "Bon de livraison introuvable")
	}
	return envoyerDocument(ctx, s.dispatcher, worker.DocumentBonLivraison, id, email)
}

// ── Client order synchronisation ──────────────────────────────────────────────

// commandeLieeTx locks the client order a note imputed onto, if any.
func (s *livraisonService) commandeLieeTx(tx *gorm.DB, bl *model.BonLivraison) (*model.BonCommandeClient, error) {
	if bl.BonCommandeClientID == nil {
		return nil, nil
	}
	impute := false
	for _, l := range bl.Lignes {
		if l.QuantiteImputee.IsPositive() {
			impute = true
			break
		}
	}
	if !impute && !s.synchroniser {
		return nil, nil
	}
	bc, err := s.commandes.FindForUpdateTx(tx, *bl.BonCommandeClientID)
	if err != nil {
		return nil, notFound(err, "Commande client introuvable")
	}
	return bc, nil
}

// imputer credits up to quantite onto the matching order line's
// quantite_livree. Stock was already moved by the delivery line.
func (s *livraisonService) imputer(bc *model.BonCommandeClient, articleID uuid.UUID, quantite decimal.Decimal) decimal.Decimal {
	if !s.synchroniser || bc == nil || bc.Statut == model.StatutAnnule {
		return decimal.Zero
	}
	for i := range bc.Lignes {
		l := &bc.Lignes[i]
		if l.ArticleID != articleID {
			continue
		}
		part := minDecimal(quantite, l.Quantite.Sub(l.QuantiteLivree))
		if !part.IsPositive() {
			return decimal.Zero
		}
		l.QuantiteLivree = l.QuantiteLivree.Add(part)
		return part
	}
	return decimal.Zero
}

func (s *livraisonService) desimputer(bc *model.BonCommandeClient, articleID uuid.UUID, part decimal.Decimal) {
	if bc == nil || !part.IsPositive() {
		return
	}
	for i := range bc.Lignes {
		if bc.Lignes[i].ArticleID == articleID {
			bc.Lignes[i].QuantiteLivree = bc.Lignes[i].QuantiteLivree.Sub(part)
			return
		}
	}
}

// enregistrerCommandeTx persists the order lines touched by imputations and
// recomputes the status of an order still open.
func (s *livraisonService) enregistrerCommandeTx(tx *gorm.DB, bc *model.BonCommandeClient) error {
	if bc == nil {
		return nil
	}
	for i := range bc.Lignes {
		if err := s.commandes.UpdateLigneTx(tx, &bc.Lignes[i]); err != nil {
			return err
		}
	}
	if bc.Statut == model.StatutAnnule {
		return nil
	}
	statut := statutLivraison(bc.Lignes)
	if statut == bc.Statut {
		return nil
	}
	bc.Statut = statut
	return s.commandes.UpdateTx(tx, bc)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func parseLignesLivraison(req []dto.LigneLivraisonRequest) ([]ligneLivraison, error) {
	if len(req) == 0 {
		return nil, apierror.Validation("Le bon de livraison doit contenir au moins une ligne")
	}
	lignes := make([]ligneLivraison, 0, len(req))
	ids := make([]uuid.UUID, 0, len(req))
	for _, l := range req {
		articleID, err := parseID(l.ArticleID, "article_id")
		if err != nil {
			return nil, err
		}
		if !l.Quantite.IsPositive() {
			return nil, apierror.Validation("La quantité livrée doit être positive")
		}
		if l.PrixUnitaire != nil && l.PrixUnitaire.IsNegative() {
			return nil, apierror.Validation("prix_unitaire ne peut pas être négatif")
		}
		lignes = append(lignes, ligneLivraison{
			articleID:    articleID,
			quantite:     l.Quantite,
			prixUnitaire: l.PrixUnitaire,
			tva:          l.TVA,
			remise:       l.Remise,
		})
		ids = append(ids, articleID)
	}
	return lignes, uniqueArticles(ids)
}

func totauxLivraison(lignes []model.BonLivraisonLigne) model.Totaux {
	montants := make([]montantLigne, 0, len(lignes))
	for _, l := range lignes {
		montants = append(montants, montantLigne{
			Quantite:     l.Quantite,
			PrixUnitaire: l.PrixUnitaire,
			Remise:       l.Remise,
			TVA:          l.TVA,
		})
	}
	return calculerTotaux(montants, "", decimal.Zero)
}

func livraisonToResponse(bl *model.BonLivraison) *dto.LivraisonResponse {
	resp := &dto.LivraisonResponse{
		ID:                  bl.ID.String(),
		NumeroLivraison:     bl.NumeroLivraison,
		ClientID:            optionalIDString(bl.ClientID),
		ClientWebsiteID:     optionalIDString(bl.ClientWebsiteID),
		VendeurID:           optionalIDString(bl.VendeurID),
		BonCommandeClientID: optionalIDString(bl.BonCommandeClientID),
		DateLivraison:       bl.DateLivraison.Format(dateLayout),
		Statut:              bl.Statut,
		Totaux:              totauxToResponse(bl.Totaux),
		Notes:               bl.Notes,
		Lignes:              make([]dto.LigneLivraisonResponse, 0, len(bl.Lignes)),
	}
	if bl.Client != nil {
		resp.Client = bl.Client.Nom
	} else if bl.ClientWebsite != nil {
		resp.Client = bl.ClientWebsite.Nom
	}
	if bl.BonCommandeClient != nil {
		resp.NumeroCommande = bl.BonCommandeClient.NumeroCommande
	}
	for _, l := range bl.Lignes {
		r := dto.LigneLivraisonResponse{
			ID:              l.ID.String(),
			ArticleID:       l.ArticleID.String(),
			Quantite:        l.Quantite,
			QuantiteImputee: l.QuantiteImputee,
			PrixUnitaire:    l.PrixUnitaire,
			TVA:             l.TVA,
			Remise:          l.Remise,
		}
		if l.Article != nil {
			r.Article = l.Article.Designation
		}
		resp.Lignes = append(resp.Lignes, r)
	}
	return resp
}
