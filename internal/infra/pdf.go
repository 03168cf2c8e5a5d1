package infra

// pdf.go renders purchase orders and delivery notes as A4 PDFs with go-pdf/fpdf.
// Files are written to storagePath/{prefix}_{numero}.pdf, the numero slash
// replaced so "BL-00012/2024" becomes bl_BL-00012-2024.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gescom/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// pdfLigne is one printable row, common to every document family.
type pdfLigne struct {
	Reference   string
	Designation string
	Quantite    decimal.Decimal
	Prix        decimal.Decimal
	Taux        decimal.Decimal
}

type pdfDocument struct {
	Titre    string
	Numero   string
	Date     time.Time
	Tiers    string
	Statut   string
	Emetteur string
	Lignes   []pdfLigne
	Totaux   model.Totaux
	Notes    *string
}

// GenerateBonCommandePDF renders a supplier purchase order.
func GenerateBonCommandePDF(bc *model.BonCommande, emetteur, storagePath string) (string, error) {
	doc := pdfDocument{
		Titre:    "BON DE COMMANDE",
		Numero:   bc.NumeroCommande,
		Date:     bc.DateCommande,
		Statut:   bc.Statut,
		Emetteur: emetteur,
		Totaux:   bc.Totaux,
		Notes:    bc.Notes,
	}
	if bc.Fournisseur != nil {
		doc.Tiers = "Fournisseur : " + bc.Fournisseur.RaisonSociale + " (MF " + bc.Fournisseur.MatriculeFiscal + ")"
	}
	for _, l := range bc.Lignes {
		doc.Lignes = append(doc.Lignes, pdfLigne{
			Reference:   articleRef(l.Article),
			Designation: articleDesignation(l.Article),
			Quantite:    l.Quantite,
			Prix:        l.PrixUnitaire,
			Taux:        l.TVA,
		})
	}
	return doc.write(filepath.Join(storagePath, pdfFileName("bc", bc.NumeroCommande)), storagePath)
}

// GenerateBonLivraisonPDF renders a delivery note for a registered or web client.
func GenerateBonLivraisonPDF(bl *model.BonLivraison, emetteur, storagePath string) (string, error) {
	doc := pdfDocument{
		Titre:    "BON DE LIVRAISON",
		Numero:   bl.NumeroLivraison,
		Date:     bl.DateLivraison,
		Statut:   bl.Statut,
		Emetteur: emetteur,
		Totaux:   bl.Totaux,
		Notes:    bl.Notes,
	}
	switch {
	case bl.Client != nil:
		doc.Tiers = "Client : " + bl.Client.Nom
	case bl.ClientWebsite != nil:
		doc.Tiers = "Client : " + bl.ClientWebsite.Nom + " - " + bl.ClientWebsite.Adresse
	}
	if bl.BonCommandeClient != nil {
		doc.Tiers += "   Commande " + bl.BonCommandeClient.NumeroCommande
	}
	for _, l := range bl.Lignes {
		doc.Lignes = append(doc.Lignes, pdfLigne{
			Reference:   articleRef(l.Article),
			Designation: articleDesignation(l.Article),
			Quantite:    l.Quantite,
			Prix:        l.PrixUnitaire,
			Taux:        l.TVA,
		})
	}
	return doc.write(filepath.Join(storagePath, pdfFileName("bl", bl.NumeroLivraison)), storagePath)
}

func (d pdfDocument) write(filePath, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW/2, 8, tr(d.Emetteur), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 8, tr(d.Titre), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW/2, 5, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, tr("N° "+d.Numero), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW/2, 5, tr(d.Tiers), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, "Date : "+d.Date.Format("02/01/2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW, 5, tr("Statut : "+d.Statut), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	// ── Lines ────────────────────────────────────────────────────────────────
	widths := []float64{contentW * 0.16, contentW * 0.38, contentW * 0.12, contentW * 0.14, contentW * 0.08, contentW * 0.12}
	headers := []string{"Référence", "Désignation", "Qté", "P.U. HT", "TVA", "Total HT"}
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, l := range d.Lignes {
		designation := l.Designation
		if len([]rune(designation)) > 45 {
			designation = string([]rune(designation)[:44]) + "…"
		}
		pdf.CellFormat(widths[0], 6, tr(l.Reference), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(designation), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, l.Quantite.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, l.Prix.StringFixed(3), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, l.Taux.String()+"%", "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, l.Quantite.Mul(l.Prix).StringFixed(3), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := contentW * 0.8
	valueW := contentW * 0.2
	totaux := []struct {
		label  string
		valeur decimal.Decimal
	}{
		{"Sous-total HT", d.Totaux.SousTotal},
		{"Remise", d.Totaux.TotalRemise},
		{"FODEC", d.Totaux.TotalFodec},
		{"TVA", d.Totaux.TotalTVA},
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, t := range totaux {
		if t.valeur.IsZero() {
			continue
		}
		pdf.CellFormat(labelW, 5, tr(t.label), "", 0, "R", false, 0, "")
		pdf.CellFormat(valueW, 5, t.valeur.StringFixed(3), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelW, 7, "Total TTC", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 7, d.Totaux.GrandTotal.StringFixed(3)+" TND", "", 1, "R", false, 0, "")

	if d.Notes != nil && *d.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, tr(*d.Notes), "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func pdfFileName(prefix, numero string) string {
	return prefix + "_" + strings.ReplaceAll(numero, "/", "-") + ".pdf"
}

func articleRef(a *model.Article) string {
	if a == nil {
		return ""
	}
	return a.Reference
}

func articleDesignation(a *model.Article) string {
	if a == nil {
		return ""
	}
	return a.Designation
}
