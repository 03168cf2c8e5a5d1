package service

import (
	"context"
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

// CommandeClientService manages client sales orders. The delivered part of
// each line (quantite_livree) is taken out of qte and qte_physique when it is
// recorded on the order.
type CommandeClientService interface {
	Creer(ctx context.Context, req dto.CreerCommandeClientRequest) (*dto.CommandeClientResponse, error)
	Modifier(ctx context.Context, id uuid.UUID, req dto.ModifierCommandeClientRequest) (*dto.CommandeClientResponse, error)
	Annuler(ctx context.Context, id uuid.UUID) (*dto.CommandeClientResponse, error)
	Supprimer(ctx context.Context, id uuid.UUID) error
	Obtenir(ctx context.Context, id uuid.UUID) (*dto.CommandeClientResponse, error)
	Lister(ctx context.Context, filter dto.DocumentFilter) (*dto.Page[dto.CommandeClientResponse], error)
	ProchainNumero(ctx context.Context) (*dto.NumeroResponse, error)
}

type commandeClientService struct {
	tx         TxRunner
	repo       repository.BonCommandeClientRepository
	livraisons repository.BonLivraisonRepository
	clients    repository.ClientRepository
	inventaire InventaireService
}

func NewCommandeClientService(
	tx TxRunner,
	repo repository.BonCommandeClientRepository,
	livraisons repository.BonLivraisonRepository,
	clients repository.ClientRepository,
	inventaire InventaireService,
) CommandeClientService {
	return &commandeClientService{
		tx:         tx,
		repo:       repo,
		livraisons: livraisons,
		clients:    clients,
		inventaire: inventaire,
	}
}

type ligneCommandeClient struct {
	articleID      uuid.UUID
	quantite       decimal.Decimal
	quantiteLivree decimal.Decimal
	prixUnitaire   decimal.Decimal
	tva            *decimal.Decimal
	remise         decimal.Decimal
}

func (l ligneCommandeClient) modele(bonID uuid.UUID, art *model.Article) model.BonCommandeClientLigne {
	return model.BonCommandeClientLigne{
		ID:                  uuid.New(),
		BonCommandeClientID: bonID,
		ArticleID:           l.articleID,
		Quantite:            l.quantite,
		QuantiteLivree:      l.quantiteLivree,
		PrixUnitaire:        l.prixUnitaire,
		TVA:                 decimalOr(l.tva, art.TVA),
		Remise:              l.remise,
		Article:             art,
	}
}

// identique reports whether the stored line already matches the request.
func (l ligneCommandeClient) identique(m model.BonCommandeClientLigne) bool {
	return l.quantite.Equal(m.Quantite) &&
		l.quantiteLivree.Equal(m.QuantiteLivree) &&
		l.prixUnitaire.Equal(m.PrixUnitaire) &&
		(l.tva == nil || l.tva.Equal(m.TVA)) &&
		l.remise.Equal(m.Remise)
}

// ── Creer ─────────────────────────────────────────────────────────────────────

func (s *commandeClientService) Creer(ctx context.Context, req dto.CreerCommandeClientRequest) (*dto.CommandeClientResponse, error) {
	clientID, err := parseOptionalID(req.ClientID, "client_id")
	if err != nil {
		return nil, err
	}
	vendeurID, err := parseOptionalID(req.VendeurID, "vendeur_id")
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.DateCommande, "date_commande")
	if err != nil {
		return nil, err
	}
	lignes, err := parseLignesCommandeClient(req.Lignes)
	if err != nil {
		return nil, err
	}

	bc := model.BonCommandeClient{
		ID:           uuid.New(),
		VendeurID:    vendeurID,
		DateCommande: date,
		ModePaiement: req.ModePaiement,
		MontantPaye:  req.MontantPaye,
		Notes:        req.Notes,
	}
	switch {
	case clientID != nil:
		c, err := s.clients.FindByID(ctx, *clientID)
		if err != nil {
			return nil, notFound(err, "Client introuvable")
		}
		bc.ClientID, bc.Client = &c.ID, c
	case req.ClientWebsiteInfo != nil:
		info := req.ClientWebsiteInfo
		if info.Nom == "" || info.Telephone == "" || info.Adresse == "" {
			return nil, apierror.Validation("client_website_info : nom, telephone et adresse sont requis")
		}
		bc.ClientWebsite = &model.ClientWebsite{
			ID: uuid.New(), Nom: info.Nom, Telephone: info.Telephone, Adresse: info.Adresse, Email: info.Email,
		}
		bc.ClientWebsiteID = &bc.ClientWebsite.ID
	default:
		return nil, apierror.Validation("client_id ou client_website_info requis")
	}

	err = s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		if bc.ClientWebsite != nil {
			if err := s.clients.CreateWebsiteTx(tx, bc.ClientWebsite); err != nil {
				return err
			}
		}
		numero, err := s.repo.NextNumeroTx(tx, time.Now().Year())
		if err != nil {
			return err
		}
		bc.NumeroCommande = numero
		motif := refLabel("Commande client", numero)

		for _, l := range lignes {
			art, err := s.inventaire.AjusterTx(tx, mouvementPhysique(l.articleID, l.quantiteLivree.Neg(), model.MouvementCommandeClient, motif, bc.ID))
			if err != nil {
				return err
			}
			bc.Lignes = append(bc.Lignes, l.modele(bc.ID, art))
		}
		bc.Statut = statutLivraison(bc.Lignes)
		bc.Totaux = totauxCommandeClient(bc.Lignes)
		return s.repo.CreateTx(tx, &bc)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("numero", bc.NumeroCommande).Str("statut", bc.Statut).Msg("commande client créée")
	return commandeClientToResponse(&bc), nil
}

// ── Modifier ──────────────────────────────────────────────────────────────────

func (s *commandeClientService) Modifier(ctx context.Context, id uuid.UUID, req dto.ModifierCommandeClientRequest) (*dto.CommandeClientResponse, error) {
	vendeurID, err := parseOptionalID(req.VendeurID, "vendeur_id")
	if err != nil {
		return nil, err
	}
	var date *time.Time
	if req.DateCommande != "" {
		d, err := parseDate(req.DateCommande, "date_commande")
		if err != nil {
			return nil, err
		}
		date = &d
	}
	var lignes []ligneCommandeClient
	if req.Lignes != nil {
		if lignes, err = parseLignesCommandeClient(req.Lignes); err != nil {
			return nil, err
		}
	}

	var bc *model.BonCommandeClient
	err = s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		bc, err = s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "Commande client introuvable")
		}
		if bc.Statut == model.StatutAnnule {
			return apierror.Conflict("La commande %s est annulée", bc.NumeroCommande)
		}

		if req.Lignes != nil && !lignesIdentiques(bc.Lignes, lignes) {
			n, err := s.livraisons.CountByCommandeClientTx(tx, bc.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return apierror.Conflict("La commande %s est liée à un bon de livraison : ses lignes ne peuvent plus être modifiées", bc.NumeroCommande)
			}
			if err := s.appliquerLignesTx(tx, bc, lignes); err != nil {
				return err
			}
			bc.Statut = statutLivraison(bc.Lignes)
			bc.Totaux = totauxCommandeClient(bc.Lignes)
		}

		if vendeurID != nil {
			bc.VendeurID = vendeurID
		}
		if date != nil {
			bc.DateCommande = *date
		}
		if req.ModePaiement != nil {
			bc.ModePaiement = req.ModePaiement
		}
		if req.MontantPaye != nil {
			bc.MontantPaye = *req.MontantPaye
		}
		if req.Notes != nil {
			bc.Notes = req.Notes
		}
		return s.repo.UpdateTx(tx, bc)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("numero", bc.NumeroCommande).Str("statut", bc.Statut).Msg("commande client modifiée")
	return commandeClientToResponse(bc), nil
}

// appliquerLignesTx moves stock by the change of delivered quantity per article.
func (s *commandeClientService) appliquerLignesTx(tx *gorm.DB, bc *model.BonCommandeClient, lignes []ligneCommandeClient) error {
	motif := refLabel("Modification commande client", bc.NumeroCommande)
	d := diffParArticle(bc.Lignes, lignes,
		func(l model.BonCommandeClientLigne) uuid.UUID { return l.ArticleID },
		func(l ligneCommandeClient) uuid.UUID { return l.articleID })

	var resultat []model.BonCommandeClientLigne
	for _, old := range d.supprimees {
		if _, err := s.inventaire.AjusterTx(tx, mouvementPhysique(old.ArticleID, old.QuantiteLivree, model.MouvementCommandeClient, motif, bc.ID)); err != nil {
			return err
		}
		if err := s.repo.DeleteLigneTx(tx, old.ID); err != nil {
			return err
		}
	}
	for _, p := range d.conservees {
		delta := p.nouvelle.quantiteLivree.Sub(p.ancienne.QuantiteLivree)
		art, err := s.inventaire.AjusterTx(tx, mouvementPhysique(p.nouvelle.articleID, delta.Neg(), model.MouvementCommandeClient, motif, bc.ID))
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
		art, err := s.inventaire.AjusterTx(tx, mouvementPhysique(n.articleID, n.quantiteLivree.Neg(), model.MouvementCommandeClient, motif, bc.ID))
		if err != nil {
			return err
		}
		l := n.modele(bc.ID, art)
		if err := s.repo.CreateLigneTx(tx, &l); err != nil {
			return err
		}
		resultat = append(resultat, l)
	}
	bc.Lignes = resultat
	return nil
}

// ── Annuler / Supprimer ───────────────────────────────────────────────────────

// Annuler only flags the order; delivered quantities stay out of stock until
// the order is deleted.
func (s *commandeClientService) Annuler(ctx context.Context, id uuid.UUID) (*dto.CommandeClientResponse, error) {
	var bc *model.BonCommandeClient
	err := s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		var err error
		bc, err = s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "Commande client introuvable")
		}
		if bc.Statut == model.StatutAnnule {
			return apierror.Conflict("La commande %s est déjà annulée", bc.NumeroCommande)
		}
		bc.Statut = model.StatutAnnule
		return s.repo.UpdateTx(tx, bc)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("numero", bc.NumeroCommande).Msg("commande client annulée")
	return commandeClientToResponse(bc), nil
}

// Supprimer puts every delivered quantity back into stock.
func (s *commandeClientService) Supprimer(ctx context.Context, id uuid.UUID) error {
	var numero string
	err := s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		bc, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "Commande client introuvable")
		}
		numero = bc.NumeroCommande
		n, err := s.livraisons.CountByCommandeClientTx(tx, bc.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apierror.Conflict("La commande %s est liée à %d bon(s) de livraison", bc.NumeroCommande, n)
		}
		motif := refLabel("Suppression commande client", bc.NumeroCommande)
		for _, l := range bc.Lignes {
			if _, err := s.inventaire.AjusterTx(tx, mouvementPhysique(l.ArticleID, l.QuantiteLivree, model.MouvementCommandeClient, motif, bc.ID)); err != nil {
				return err
			}
		}
		return s.repo.DeleteTx(tx, bc.ID)
	})
	if err != nil {
		return err
	}
	log.Info().Str("numero", numero).Msg("commande client supprimée")
	return nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *commandeClientService) Obtenir(ctx context.Context, id uuid.UUID) (*dto.CommandeClientResponse, error) {
	bc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Commande client introuvable")
	}
	return commandeClientToResponse(bc), nil
}

func (s *commandeClientService) Lister(ctx context.Context, filter dto.DocumentFilter) (*dto.Page[dto.CommandeClientResponse], error) {
	f, err := documentFilter(filter)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CommandeClientResponse, 0, len(rows))
	for i := range rows {
		data = append(data, *commandeClientToResponse(&rows[i]))
	}
	return dto.NewPage(data, total, filter.Page, filter.Limit), nil
}

func (s *commandeClientService) ProchainNumero(ctx context.Context) (*dto.NumeroResponse, error) {
	n, err := s.repo.NextNumero(ctx, time.Now().Year())
	if err != nil {
		return nil, err
	}
	return &dto.NumeroResponse{Numero: n}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func parseLignesCommandeClient(req []dto.LigneCommandeClientRequest) ([]ligneCommandeClient, error) {
	if len(req) == 0 {
		return nil, apierror.Validation("La commande doit contenir au moins une ligne")
	}
	lignes := make([]ligneCommandeClient, 0, len(req))
	ids := make([]uuid.UUID, 0, len(req))
	for _, l := range req {
		articleID, err := parseID(l.ArticleID, "article_id")
		if err != nil {
			return nil, err
		}
		if !l.Quantite.IsPositive() {
			return nil, apierror.Validation("La quantité commandée doit être positive")
		}
		if l.QuantiteLivree.IsNegative() {
			return nil, apierror.Validation("La quantité livrée ne peut pas être négative")
		}
		if l.QuantiteLivree.GreaterThan(l.Quantite) {
			return nil, apierror.Validation("La quantité livrée (%s) dépasse la quantité commandée (%s)",
				l.QuantiteLivree.String(), l.Quantite.String())
		}
		if l.PrixUnitaire == nil || l.PrixUnitaire.IsNegative() {
			return nil, apierror.Validation("prix_unitaire requis pour chaque ligne")
		}
		lignes = append(lignes, ligneCommandeClient{
			articleID:      articleID,
			quantite:       l.Quantite,
			quantiteLivree: l.QuantiteLivree,
			prixUnitaire:   *l.PrixUnitaire,
			tva:            l.TVA,
			remise:         l.Remise,
		})
		ids = append(ids, articleID)
	}
	return lignes, uniqueArticles(ids)
}

func lignesIdentiques(stockees []model.BonCommandeClientLigne, demandees []ligneCommandeClient) bool {
	if len(stockees) != len(demandees) {
		return false
	}
	d := diffParArticle(stockees, demandees,
		func(l model.BonCommandeClientLigne) uuid.UUID { return l.ArticleID },
		func(l ligneCommandeClient) uuid.UUID { return l.articleID })
	if len(d.supprimees) > 0 || len(d.ajoutees) > 0 {
		return false
	}
	for _, p := range d.conservees {
		if !p.nouvelle.identique(p.ancienne) {
			return false
		}
	}
	return true
}

// statutLivraison derives a client order status from its delivered quantities.
func statutLivraison(lignes []model.BonCommandeClientLigne) string {
	total, livre := decimal.Zero, decimal.Zero
	for _, l := range lignes {
		total = total.Add(l.Quantite)
		livre = livre.Add(l.QuantiteLivree)
	}
	switch {
	case total.IsPositive() && livre.Equal(total):
		return model.StatutLivre
	case livre.IsPositive() && livre.LessThan(total):
		return model.StatutPartiellementLivre
	default:
		return model.StatutConfirme
	}
}

func totauxCommandeClient(lignes []model.BonCommandeClientLigne) model.Totaux {
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

func commandeClientToResponse(bc *model.BonCommandeClient) *dto.CommandeClientResponse {
	resp := &dto.CommandeClientResponse{
		ID:              bc.ID.String(),
		NumeroCommande:  bc.NumeroCommande,
		ClientID:        optionalIDString(bc.ClientID),
		ClientWebsiteID: optionalIDString(bc.ClientWebsiteID),
		VendeurID:       optionalIDString(bc.VendeurID),
		DateCommande:    bc.DateCommande.Format(dateLayout),
		Statut:          bc.Statut,
		Totaux:          totauxToResponse(bc.Totaux),
		ModePaiement:    bc.ModePaiement,
		MontantPaye:     bc.MontantPaye,
		ResteAPayer:     bc.GrandTotal.Sub(bc.MontantPaye),
		Notes:           bc.Notes,
		Lignes:          make([]dto.LigneCommandeClientResponse, 0, len(bc.Lignes)),
	}
	if bc.Client != nil {
		resp.Client = bc.Client.Nom
	}
	if w := bc.ClientWebsite; w != nil {
		resp.Client = w.Nom
		resp.ClientWebsite = &dto.ClientWebsiteResponse{
			ID: w.ID.String(), Nom: w.Nom, Telephone: w.Telephone, Adresse: w.Adresse, Email: w.Email,
		}
	}
	for _, l := range bc.Lignes {
		r := dto.LigneCommandeClientResponse{
			ID:             l.ID.String(),
			ArticleID:      l.ArticleID.String(),
			Quantite:       l.Quantite,
			QuantiteLivree: l.QuantiteLivree,
			PrixUnitaire:   l.PrixUnitaire,
			TVA:            l.TVA,
			Remise:         l.Remise,
		}
		if l.Article != nil {
			r.Article = l.Article.Designation
		}
		resp.Lignes = append(resp.Lignes, r)
	}
	return resp
}
