package service

import (
	"gescom/internal/model"

	"github.com/shopspring/decimal"
)

var cent = decimal.NewFromInt(100)

// montantLigne holds the inputs of one document line's amounts. Rates are
// percentages.
type montantLigne struct {
	Quantite     decimal.Decimal
	PrixUnitaire decimal.Decimal
	Remise       decimal.Decimal
	TauxFodec    decimal.Decimal
	TVA          decimal.Decimal
}

// calculer returns the line amounts: net HT after line discount, the line
// discount, FODEC on the net HT, TVA on net HT plus FODEC.
func (l montantLigne) calculer() (ht, remise, fodec, tva decimal.Decimal) {
	brut := l.Quantite.Mul(l.PrixUnitaire)
	remise = brut.Mul(l.Remise).Div(cent)
	ht = brut.Sub(remise)
	fodec = ht.Mul(l.TauxFodec).Div(cent)
	tva = ht.Add(fodec).Mul(l.TVA).Div(cent)
	return ht, remise, fodec, tva
}

// calculerTotaux aggregates line amounts and applies the header discount:
// a percentage of the sub-total or a fixed amount. Amounts are rounded to
// the millime.
func calculerTotaux(lignes []montantLigne, remiseType string, remise decimal.Decimal) model.Totaux {
	var t model.Totaux
	for _, l := range lignes {
		ht, r, f, v := l.calculer()
		t.SousTotal = t.SousTotal.Add(ht)
		t.TotalRemise = t.TotalRemise.Add(r)
		t.TotalFodec = t.TotalFodec.Add(f)
		t.TotalTVA = t.TotalTVA.Add(v)
	}

	remiseGlobale := decimal.Zero
	switch remiseType {
	case model.RemisePourcentage:
		remiseGlobale = t.SousTotal.Mul(remise).Div(cent)
	case model.RemiseFixe:
		remiseGlobale = remise
	}

	t.TotalRemise = t.TotalRemise.Add(remiseGlobale).Round(3)
	t.GrandTotal = t.SousTotal.Add(t.TotalFodec).Add(t.TotalTVA).Sub(remiseGlobale).Round(3)
	t.SousTotal = t.SousTotal.Round(3)
	t.TotalFodec = t.TotalFodec.Round(3)
	t.TotalTVA = t.TotalTVA.Round(3)
	return t
}
