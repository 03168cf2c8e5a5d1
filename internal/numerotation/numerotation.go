// Package numerotation generates the human-readable document numbers
// ("BC-0043/2025") used by every commercial document family.
package numerotation

import (
	"fmt"
	"strconv"
	"strings"
)

// Famille is a document family: its prefix and the zero-padding width of its
// yearly sequence.
type Famille struct {
	Prefixe string
	Largeur int
}

var (
	BonCommande       = Famille{Prefixe: "BC", Largeur: 4}
	BonCommandeClient = Famille{Prefixe: "BC", Largeur: 4}
	BonReception      = Famille{Prefixe: "BR", Largeur: 3}
	BonLivraison      = Famille{Prefixe: "BL", Largeur: 5}
	Transfert         = Famille{Prefixe: "TR", Largeur: 4}
)

// Motif returns the SQL LIKE pattern matching every number of the family for
// the given year.
func (f Famille) Motif(annee int) string {
	return fmt.Sprintf("%s-%%/%d", f.Prefixe, annee)
}

// Cle identifies the family sequence for a given table, used as the advisory
// lock key when allocating numbers.
func (f Famille) Cle(table string, annee int) string {
	return fmt.Sprintf("%s:%s:%d", table, f.Prefixe, annee)
}

// Formater renders a sequence value.
func (f Famille) Formater(seq, annee int) string {
	return fmt.Sprintf("%s-%0*d/%d", f.Prefixe, f.Largeur, seq, annee)
}

// Sequence extracts the sequence part of numero when it belongs to the family
// and year. ok is false for foreign or malformed numbers.
func (f Famille) Sequence(numero string, annee int) (seq int, ok bool) {
	rest, found := strings.CutPrefix(numero, f.Prefixe+"-")
	if !found {
		return 0, false
	}
	seqPart, yearPart, found := strings.Cut(rest, "/")
	if !found || yearPart != strconv.Itoa(annee) || seqPart == "" {
		return 0, false
	}
	n, err := strconv.Atoi(seqPart)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Suivant returns the number following dernier, the greatest existing number
// of the family for annee ("" when the year has none yet). A malformed
// dernier restarts the sequence at 1.
func Suivant(f Famille, annee int, dernier string) string {
	seq, ok := f.Sequence(dernier, annee)
	if !ok {
		seq = 0
	}
	return f.Formater(seq+1, annee)
}

// Max returns the greatest sequence among numeros for the family and year.
func Max(f Famille, annee int, numeros []string) (seq int, numero string) {
	for _, n := range numeros {
		if s, ok := f.Sequence(n, annee); ok && s > seq {
			seq, numero = s, n
		}
	}
	return seq, numero
}
