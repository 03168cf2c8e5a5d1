package repository

import (
	"gescom/internal/numerotation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds SELECT … FOR UPDATE to a query running inside a transaction.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// forShare adds FOR SHARE: concurrent readers pass, writers wait for commit.
func forShare(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "SHARE"})
}

// paginate normalizes page/limit into offset/limit.
func paginate(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}
	return (page - 1) * limit, limit
}

// lastNumero returns the greatest number of the family for the year, ordered
// by length first so that sequences widening past their padding still sort.
func lastNumero(db *gorm.DB, table, column string, f numerotation.Famille, annee int) (string, error) {
	var numeros []string
	err := db.Table(table).
		Where(column+" LIKE ?", f.Motif(annee)).
		Order("length(" + column + ") DESC, " + column + " DESC").
		Limit(1).
		Pluck(column, &numeros).Error
	if err != nil || len(numeros) == 0 {
		return "", err
	}
	return numeros[0], nil
}

// nextNumeroTx allocates the next number under a transaction-scoped advisory
// lock held until commit.
func nextNumeroTx(tx *gorm.DB, table, column string, f numerotation.Famille, annee int) (string, error) {
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", f.Cle(table, annee)).Error; err != nil {
		return "", err
	}
	dernier, err := lastNumero(tx, table, column, f, annee)
	if err != nil {
		return "", err
	}
	return numerotation.Suivant(f, annee, dernier), nil
}
