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

// BonReceptionService records goods received from suppliers. Every line
// moves qte and qte_physique by its quantity. When liberer is set, lines
// linked to a purchase order also release its reservation.
type BonReceptionService interface {
	Creer(ctx context.Context, req dto.BonReceptionRequest) (*dto.BonReceptionResponse, error)
	Modifier(ctx context.Context, id uuid.UUID, req dto.BonReceptionRequest) (*dto.BonReceptionResponse, error)
	Supprimer(ctx context.Context, id uuid.UUID) error
	Obtenir(ctx context.Context, id uuid.UUID) (*dto.BonReceptionResponse, error)
	Lister(ctx context.Context, filter dto.DocumentFilter) (*dto.Page[dto.BonReceptionResponse], error)
	ProchainNumero(ctx context.Context) (*dto.NumeroResponse, error)
}

type bonReceptionService struct {
	tx           TxRunner
	repo         repository.BonReceptionRepository
	commandes    repository.BonCommandeRepository
	fournisseurs repository.FournisseurRepository
	inventaire   InventaireService
	liberer      bool
}

func NewBonReceptionService(
	tx TxRunner,
	repo repository.BonReceptionRepository,
	commandes repository.BonCommandeRepository,
	fournisseurs repository.FournisseurRepository,
	inventaire InventaireService,
	libererReservation bool,
) BonReceptionService {
	return &bonReceptionService{
		tx:           tx,
		repo:         repo,
		commandes:    commandes,
		fournisseurs: fournisseurs,
		inventaire:   inventaire,
		liberer:      libererReservation,
	}
}

type ligneReception struct {
	articleID    uuid.UUID
	quantite     decimal.Decimal
	prixUnitaire decimal.Decimal
	tva          *decimal.Decimal
	remise       decimal.Decimal
}

func (l ligneReception) modele(bonID uuid.UUID, art *model.Article) model.BonReceptionLigne {
	return model.BonReceptionLigne{
		ID:              uuid.New(),
		BonReceptionID:  bonID,
		ArticleID:       l.articleID,
		Quantite:        l.quantite,
		QuantiteImputee: decimal.Zero,
		PrixUnitaire:    l.prixUnitaire,
		TVA:             decimalOr(l.tva, art.TVA),
		Remise:          l.remise,
		Article:         art,
	}
}

// ── Creer ─────────────────────────────────────────────────────────────────────

func (s *bonReceptionService) Creer(ctx context.Context, req dto.BonReceptionRequest) (*dto.BonReceptionResponse, error) {
	entete, lignes, err := s.preparer(ctx, req)
	if err != nil {
		return nil, err
	}
	br := entete
	br.ID = uuid.New()
	br.Statut = model.StatutRecu

	err = s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		commande, err := s.commandeTx(tx, br.BonCommandeID, br.FournisseurID)
		if err != nil {
			return err
		}
		numero, err := s.repo.NextNumeroTx(tx, time.Now().Year())
		if err != nil {
			return err
		}
		br.NumeroReception = numero
		motif := refLabel("Réception", numero)

		for _, l := range lignes {
			art, err := s.inventaire.AjusterTx(tx, mouvementPhysique(l.articleID, l.quantite, model.MouvementReception, motif, br.ID))
			if err != nil {
				return err
			}
			ligne := l.modele(br.ID, art)
			if ligne.QuantiteImputee, err = s.imputerTx(tx, commande, ligne.ArticleID, ligne.Quantite, motif, br.ID); err != nil {
				return err
			}
			br.Lignes = append(br.Lignes, ligne)
		}
		if err := s.statutCommandeTx(tx, commande); err != nil {
			return err
		}
		br.Totaux = totauxReception(br.Lignes)
		br.BonCommande = commande
		return s.repo.CreateTx(tx, &br)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("numero", br.NumeroReception).Int("lignes", len(br.Lignes)).Msg("bon de réception créé")
	return bonReceptionToResponse(&br), nil
}

// ── Modifier ──────────────────────────────────────────────────────────────────

func (s *bonReceptionService) Modifier(ctx context.Context, id uuid.UUID, req dto.BonReceptionRequest) (*dto.BonReceptionResponse, error) {
	entete, lignes, err := s.preparer(ctx, req)
	if err != nil {
		return nil, err
	}

	var br *model.BonReception
	err = s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		br, err = s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "Bon de réception introuvable")
		}
		motif := refLabel("Modification réception", br.NumeroReception)

		// Imputations are undone against the old order, then redone against
		// the requested one.
		ancienne, err := s.commandeTx(tx, br.BonCommandeID, uuid.Nil)
		if err != nil {
			return err
		}
		for i := range br.Lignes {
			if err := s.desimputerTx(tx, ancienne, br.Lignes[i].ArticleID, br.Lignes[i].QuantiteImputee, motif, br.ID); err != nil {
				return err
			}
			br.Lignes[i].QuantiteImputee = decimal.Zero
		}
		if err := s.statutCommandeTx(tx, ancienne); err != nil {
			return err
		}

		commande := ancienne
		if !memeCommande(br.BonCommandeID, entete.BonCommandeID) || br.FournisseurID != entete.FournisseurID {
			if commande, err = s.commandeTx(tx, entete.BonCommandeID, entete.FournisseurID); err != nil {
				return err
			}
		}

		d := diffParArticle(br.Lignes, lignes,
			func(l model.BonReceptionLigne) uuid.UUID { return l.ArticleID },
			func(l ligneReception) uuid.UUID { return l.articleID })

		var resultat []model.BonReceptionLigne
		for _, old := range d.supprimees {
			if _, err := s.inventaire.AjusterTx(tx, mouvementPhysique(old.ArticleID, old.Quantite.Neg(), model.MouvementReception, motif, br.ID)); err != nil {
				return err
			}
			if err := s.repo.DeleteLigneTx(tx, old.ID); err != nil {
				return err
			}
		}
		for _, p := range d.conservees {
			delta := p.nouvelle.quantite.Sub(p.ancienne.Quantite)
			art, err := s.inventaire.AjusterTx(tx, mouvementPhysique(p.nouvelle.articleID, delta, model.MouvementReception, motif, br.ID))
			if err != nil {
				return err
			}
			l := p.nouvelle.modele(br.ID, art)
			l.ID = p.ancienne.ID
			if l.QuantiteImputee, err = s.imputerTx(tx, commande, l.ArticleID, l.Quantite, motif, br.ID); err != nil {
				return err
			}
			if err := s.repo.UpdateLigneTx(tx, &l); err != nil {
				return err
			}
			resultat = append(resultat, l)
		}
		for _, n := range d.ajoutees {
			art, err := s.inventaire.AjusterTx(tx, mouvementPhysique(n.articleID, n.quantite, model.MouvementReception, motif, br.ID))
			if err != nil {
				return err
			}
			l := n.modele(br.ID, art)
			if l.QuantiteImputee, err = s.imputerTx(tx, commande, l.ArticleID, l.Quantite, motif, br.ID); err != nil {
				return err
			}
			if err := s.repo.CreateLigneTx(tx, &l); err != nil {
				return err
			}
			resultat = append(resultat, l)
		}
		if err := s.statutCommandeTx(tx, commande); err != nil {
			return err
		}

		br.FournisseurID = entete.FournisseurID
		br.Fournisseur = entete.Fournisseur
		br.BonCommandeID = entete.BonCommandeID
		br.BonCommande = commande
		br.DateReception = entete.DateReception
		br.Notes = entete.Notes
		br.Lignes = resultat
		br.Totaux = totauxReception(br.Lignes)
		return s.repo.UpdateTx(tx, br)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("numero", br.NumeroReception).Msg("bon de réception modifié")
	return bonReceptionToResponse(br), nil
}

// ── Supprimer ─────────────────────────────────────────────────────────────────

// Supprimer takes every received quantity back out of stock and undoes the
// imputations on the linked purchase order.
func (s *bonReceptionService) Supprimer(ctx context.Context, id uuid.UUID) error {
	var numero string
	err := s.tx.RunTx(ctx, func(tx *gorm.DB) error {
		br, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "Bon de réception introuvable")
		}
		numero = br.NumeroReception
		motif := refLabel("Suppression réception", br.NumeroReception)

		commande, err := s.commandeTx(tx, br.BonCommandeID, uuid.Nil)
		if err != nil {
			return err
		}
		for _, l := range br.Lignes {
			if _, err := s.inventaire.AjusterTx(tx, mouvementPhysique(l.ArticleID, l.Quantite.Neg(), model.MouvementReception, motif, br.ID)); err != nil {
				return err
			}
			if err := s.desimputerTx(tx, commande, l.ArticleID, l.QuantiteImputee, motif, br.ID); err != nil {
				return err
			}
		}
		if err := s.statutCommandeTx(tx, commande); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, br.ID)
	})
	if err != nil {
		return err
	}
	log.Info().Str("numero", numero).Msg("bon de réception supprimé")
	return nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *bonReceptionService) Obtenir(ctx context.Context, id uuid.UUID) (*dto.BonReceptionResponse, error) {
	br, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Bon de réception introuvable")
	}
	return bonReceptionToResponse(br), nil
}

func (s *bonReceptionService) Lister(ctx context.Context, filter dto.DocumentFilter) (*dto.Page[dto.BonReceptionResponse], error) {
	f, err := documentFilter(filter)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.BonReceptionResponse, 0, len(rows))
	for i := range rows {
		data = append(data, *bonReceptionToResponse(&rows[i]))
	}
	return dto.NewPage(data, total, filter.Page, filter.Limit), nil
}

func (s *bonReceptionService) ProchainNumero(ctx context.Context) (*dto.NumeroResponse, error) {
	n, err := s.repo.NextNumero(ctx, time.Now().Year())
	if err != nil {
		return nil, err
	}
	return &dto.NumeroResponse{Numero: n}, nil
}

// ── Purchase order imputation ─────────────────────────────────────────────────

// commandeTx locks the linked purchase order. fournisseurID, when set, must
// match the order's supplier; a cancelled order cannot be received against.
func (s *bonReceptionService) commandeTx(tx *gorm.DB, id *uuid.UUID, fournisseurID uuid.UUID) (*model.BonCommande, error) {
	if id == nil {
		return nil, nil
	}
	bc, err := s.commandes.FindForUpdateTx(tx, *id)
	if err != nil {
		return nil, notFound(err, "Bon de commande introuvable")
	}
	if fournisseurID == uuid.Nil {
		return bc, nil
	}
	if bc.Statut == model.StatutAnnule {
		return nil, apierror.Conflict("Le bon de commande %s est annulé", bc.NumeroCommande)
	}
	if bc.FournisseurID != fournisseurID {
		return nil, apierror.Validation("Le bon de commande %s appartient à un autre fournisseur", bc.NumeroCommande)
	}
	return bc, nil
}

// imputerTx credits up to quantite onto the order line of the same article
// and releases the same amount of reservation. It returns the imputed part.
func (s *bonReceptionService) imputerTx(tx *gorm.DB, bc *model.BonCommande, articleID uuid.UUID, quantite decimal.Decimal, motif string, ref uuid.UUID) (decimal.Decimal, error) {
	if !s.liberer || bc == nil || bc.Statut == model.StatutAnnule {
		return decimal.Zero, nil
	}
	for i := range bc.Lignes {
		l := &bc.Lignes[i]
		if l.ArticleID != articleID {
			continue
		}
		part := minDecimal(quantite, l.Restant())
		if !part.IsPositive() {
			return decimal.Zero, nil
		}
		l.QuantiteRecue = l.QuantiteRecue.Add(part)
		if err := s.commandes.UpdateLigneTx(tx, l); err != nil {
			return decimal.Zero, err
		}
		if _, err := s.inventaire.AjusterTx(tx, Ajustement{
			ArticleID: articleID, QteVirtual: part.Neg(), Type: model.MouvementReception, Motif: motif, ReferenceID: &ref,
		}); err != nil {
			return decimal.Zero, err
		}
		return part, nil
	}
	return decimal.Zero, nil
}

// desimputerTx reverses an imputation. The reservation is restored only
// while the order is still open: cancelling it released everything left.
func (s *bonReceptionService) desimputerTx(tx *gorm.DB, bc *model.BonCommande, articleID uuid.UUID, part decimal.Decimal, motif string, ref uuid.UUID) error {
	if bc == nil || !part.IsPositive() {
		return nil
	}
	for i := range bc.Lignes {
		l := &bc.Lignes[i]
		if l.ArticleID != articleID {
			continue
		}
		l.QuantiteRecue = l.QuantiteRecue.Sub(part)
		if err := s.commandes.UpdateLigneTx(tx, l); err != nil {
			return err
		}
		if bc.Statut == model.StatutAnnule {
			return nil
		}
		_, err := s.inventaire.AjusterTx(tx, Ajustement{
			ArticleID: articleID, QteVirtual: part, Type: model.MouvementReception, Motif: motif, ReferenceID: &ref,
		})
		return err
	}
	return nil
}

func (s *bonReceptionService) statutCommandeTx(tx *gorm.DB, bc *model.BonCommande) error {
	if bc == nil || bc.Statut == model.StatutAnnule || bc.Statut == model.StatutBrouillon {
		return nil
	}
	statut := statutReception(bc.Lignes)
	if statut == bc.Statut {
		return nil
	}
	bc.Statut = statut
	return s.commandes.UpdateTx(tx, bc)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *bonReceptionService) preparer(ctx context.Context, req dto.BonReceptionRequest) (model.BonReception, []ligneReception, error) {
	var br model.BonReception
	fournisseurID, err := parseID(req.FournisseurID, "fournisseur_id")
	if err != nil {
		return br, nil, err
	}
	f, err := s.fournisseurs.FindByID(ctx, fournisseurID)
	if err != nil {
		return br, nil, notFound(err, "Fournisseur introuvable")
	}
	commandeID, err := parseOptionalID(req.BonCommandeID, "bon_commande_id")
	if err != nil {
		return br, nil, err
	}
	date, err := parseDate(req.DateReception, "date_reception")
	if err != nil {
		return br, nil, err
	}
	if len(req.Lignes) == 0 {
		return br, nil, apierror.Validation("Le bon de réception doit contenir au moins une ligne")
	}

	lignes := make([]ligneReception, 0, len(req.Lignes))
	ids := make([]uuid.UUID, 0, len(req.Lignes))
	for _, l := range req.Lignes {
		articleID, err := parseID(l.ArticleID, "article_id")
		if err != nil {
			return br, nil, err
		}
		if !l.Quantite.IsPositive() {
			return br, nil, apierror.Validation("La quantité reçue doit être positive")
		}
		if l.PrixUnitaire == nil || l.PrixUnitaire.IsNegative() {
			return br, nil, apierror.Validation("prix_unitaire requis pour chaque ligne")
		}
		lignes = append(lignes, ligneReception{
			articleID:    articleID,
			quantite:     l.Quantite,
			prixUnitaire: *l.PrixUnitaire,
			tva:          l.TVA,
			remise:       l.Remise,
		})
		ids = append(ids, articleID)
	}
	if err := uniqueArticles(ids); err != nil {
		return br, nil, err
	}

	br = model.BonReception{
		FournisseurID: f.ID,
		Fournisseur:   f,
		BonCommandeID: commandeID,
		DateReception: date,
		Notes:         req.Notes,
	}
	return br, lignes, nil
}

func memeCommande(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func totauxReception(lignes []model.BonReceptionLigne) model.Totaux {
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

func bonReceptionToResponse(br *model.BonReception) *dto.BonReceptionResponse {
	resp := &dto.BonReceptionResponse{
		ID:              br.ID.String(),
		NumeroReception: br.NumeroReception,
		FournisseurID:   br.FournisseurID.String(),
		BonCommandeID:   optionalIDString(br.BonCommandeID),
		DateReception:   br.DateReception.Format(dateLayout),
		Statut:          br.Statut,
		Totaux:          totauxToResponse(br.Totaux),
		Notes:           br.Notes,
		Lignes:          make([]dto.LigneBonReceptionResponse, 0, len(br.Lignes)),
	}
	if br.Fournisseur != nil {
		resp.Fournisseur = br.Fournisseur.RaisonSociale
	}
	if br.BonCommande != nil {
		resp.NumeroCommande = br.BonCommande.NumeroCommande
	}
	for _, l := range br.Lignes {
		r := dto.LigneBonReceptionResponse{
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
