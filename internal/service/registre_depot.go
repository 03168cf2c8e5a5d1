package service

import (
	"errors"

	"gescom/internal/model"
	"gescom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RegistreDepot is the per-(article, depot) stock ledger. All methods run
// inside the caller's transaction and lock the rows they touch.
type RegistreDepot struct {
	stocks     repository.StockDepotRepository
	inventaire InventaireService
}

func NewRegistreDepot(stocks repository.StockDepotRepository, inventaire InventaireService) *RegistreDepot {
	return &RegistreDepot{stocks: stocks, inventaire: inventaire}
}

// ObtenirOuCreerTx returns the locked row, or an unsaved zero row when the
// article has never been stored in the depot.
func (r *RegistreDepot) ObtenirOuCreerTx(tx *gorm.DB, articleID, depotID uuid.UUID) (*model.StockDepot, bool, error) {
	row, err := r.stocks.FindForUpdateTx(tx, articleID, depotID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.StockDepot{ArticleID: articleID, DepotID: depotID, Qte: decimal.Zero}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return row, true, nil
}

// DisponibleTx is the quantity of the article held in the depot.
func (r *RegistreDepot) DisponibleTx(tx *gorm.DB, articleID, depotID uuid.UUID) (decimal.Decimal, error) {
	row, _, err := r.ObtenirOuCreerTx(tx, articleID, depotID)
	if err != nil {
		return decimal.Zero, err
	}
	return row.Qte, nil
}

// AjusterTx adds delta to the row, creating it when needed. A row whose
// quantity ends at zero or below is removed. It returns the resulting quantity.
func (r *RegistreDepot) AjusterTx(tx *gorm.DB, articleID, depotID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	row, existe, err := r.ObtenirOuCreerTx(tx, articleID, depotID)
	if err != nil {
		return decimal.Zero, err
	}
	qte := row.Qte.Add(delta)
	switch {
	case !qte.IsPositive():
		if existe {
			if err := r.stocks.DeleteTx(tx, row.ID); err != nil {
				return decimal.Zero, err
			}
		}
	case existe:
		if err := r.stocks.UpdateQteTx(tx, row.ID, qte); err != nil {
			return decimal.Zero, err
		}
	default:
		row.ID = uuid.New()
		row.Qte = qte
		if err := r.stocks.CreateTx(tx, row); err != nil {
			return decimal.Zero, err
		}
	}
	return qte, nil
}

// SommeTx is the article quantity summed across every depot.
func (r *RegistreDepot) SommeTx(tx *gorm.DB, articleID uuid.UUID) (decimal.Decimal, error) {
	return r.stocks.SumByArticleTx(tx, articleID)
}

// RecalculerTx writes the depot sum back onto Article.qte for every article.
func (r *RegistreDepot) RecalculerTx(tx *gorm.DB, articleIDs []uuid.UUID, typ, motif string, ref *uuid.UUID) error {
	vus := make(map[uuid.UUID]bool, len(articleIDs))
	for _, id := range articleIDs {
		if vus[id] {
			continue
		}
		vus[id] = true
		somme, err := r.SommeTx(tx, id)
		if err != nil {
			return err
		}
		if err := r.inventaire.FixerQteTx(tx, id, somme, typ, motif, ref); err != nil {
			return err
		}
	}
	return nil
}
