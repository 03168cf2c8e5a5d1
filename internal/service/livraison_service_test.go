package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gescom/internal/apierror"
	"gescom/internal/dto"
	"gescom/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ligneBL(articleID uuid.UUID, quantite string) dto.LigneLivraisonRequest {
	return dto.LigneLivraisonRequest{ArticleID: articleID.String(), Quantite: dec(quantite)}
}

type livraisonFixture struct {
	*fixture
	clientID uuid.UUID
	cable    uuid.UUID
	commande uuid.UUID
}

// newLivraisonFixture holds a confirmed client order of 5 cables, nothing
// delivered, on an article with 10 in stock.
func newLivraisonFixture(t *testing.T, synchroniser bool) *livraisonFixture {
	t.Helper()
	f := &livraisonFixture{fixture: newFixture(fixtureOptions{synchroniser: synchroniser})}
	f.clientID = f.client()
	f.cable = f.article("CAB-2.5", 10)
	resp, err := f.cmdClient.Creer(context.Background(), commandeClientReq(f.clientID, ligneCC(f.cable, "5", "0", "20")))
	require.NoError(t, err)
	f.commande = uuid.MustParse(resp.ID)
	return f
}

func (f *livraisonFixture) livrer(t *testing.T, quantite string) *dto.LivraisonResponse {
	t.Helper()
	resp, err := f.livraisons.Creer(context.Background(), dto.CreerLivraisonRequest{
		BonCommandeClientID: strPtr(f.commande.String()),
		Lignes:              []dto.LigneLivraisonRequest{ligneBL(f.cable, quantite)},
	})
	require.NoError(t, err)
	return resp
}

func TestLivraison_SansCommande(t *testing.T) {
	f := newFixture(fixtureOptions{})
	client := f.client()
	cable := f.article("CAB-2.5", 10)
	ctx := context.Background()

	_, err := f.livraisons.Creer(ctx, dto.CreerLivraisonRequest{Lignes: []dto.LigneLivraisonRequest{ligneBL(cable, "1")}})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation), "client requis sans commande")

	resp, err := f.livraisons.Creer(ctx, dto.CreerLivraisonRequest{
		ClientID: strPtr(client.String()),
		Lignes:   []dto.LigneLivraisonRequest{ligneBL(cable, "3")},
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatutLivraisonLivree, resp.Statut)
	assert.Equal(t, fmt.Sprintf("BL-00001/%d", time.Now().Year()), resp.NumeroLivraison)
	assert.True(t, dec("15").Equal(resp.Lignes[0].PrixUnitaire), "prix de vente de l'article par défaut")
	assert.True(t, dec("45").Equal(resp.Totaux.SousTotal))
	assert.True(t, dec("7").Equal(f.s.articles[cable].Qte))
	assert.True(t, dec("7").Equal(f.s.articles[cable].QtePhysique))
}

func TestLivraison_SansSynchronisationLaCommandeNeBougePas(t *testing.T) {
	f := newLivraisonFixture(t, false)

	resp := f.livrer(t, "3")
	assert.True(t, resp.Lignes[0].QuantiteImputee.IsZero())
	assert.Equal(t, f.clientID.String(), *resp.ClientID, "le client vient de la commande")

	bc := f.s.commandesClient[f.commande]
	assert.Equal(t, model.StatutConfirme, bc.Statut)
	assert.True(t, bc.Lignes[0].QuantiteLivree.IsZero())
	assert.True(t, dec("7").Equal(f.s.articles[f.cable].QtePhysique))
}

func TestLivraison_SynchroniseLaCommande(t *testing.T) {
	f := newLivraisonFixture(t, true)

	first := f.livrer(t, "3")
	assert.True(t, dec("3").Equal(first.Lignes[0].QuantiteImputee))
	assert.Equal(t, model.StatutPartiellementLivre, f.s.commandesClient[f.commande].Statut)
	assert.NotEmpty(t, first.NumeroCommande)

	second := f.livrer(t, "4")
	assert.True(t, dec("2").Equal(second.Lignes[0].QuantiteImputee), "seul le reste à livrer est imputé")
	bc := f.s.commandesClient[f.commande]
	assert.Equal(t, model.StatutLivre, bc.Statut)
	assert.True(t, dec("5").Equal(bc.Lignes[0].QuantiteLivree))
	assert.True(t, dec("3").Equal(f.s.articles[f.cable].QtePhysique))
}

func TestLivraison_AnnulerRestitue(t *testing.T) {
	f := newLivraisonFixture(t, true)
	ctx := context.Background()
	first := f.livrer(t, "3")
	id := uuid.MustParse(first.ID)

	resp, err := f.livraisons.Annuler(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatutAnnule, resp.Statut)
	assert.True(t, dec("10").Equal(f.s.articles[f.cable].QtePhysique))
	bc := f.s.commandesClient[f.commande]
	assert.Equal(t, model.StatutConfirme, bc.Statut)
	assert.True(t, bc.Lignes[0].QuantiteLivree.IsZero())

	_, err = f.livraisons.Annuler(ctx, id)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))

	_, err = f.livraisons.Modifier(ctx, id, dto.ModifierLivraisonRequest{Lignes: []dto.LigneLivraisonRequest{ligneBL(f.cable, "1")}})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))

	// Deleting a cancelled note does not restore twice.
	require.NoError(t, f.livraisons.Supprimer(ctx, id))
	assert.True(t, dec("10").Equal(f.s.articles[f.cable].Qte))
	assert.True(t, dec("10").Equal(f.s.articles[f.cable].QtePhysique))
	assert.True(t, f.s.commandesClient[f.commande].Lignes[0].QuantiteLivree.IsZero())
	assert.Empty(t, f.s.livraisons)
}

func TestLivraison_SupprimerRestitue(t *testing.T) {
	f := newLivraisonFixture(t, true)
	first := f.livrer(t, "3")

	require.NoError(t, f.livraisons.Supprimer(context.Background(), uuid.MustParse(first.ID)))
	assert.True(t, dec("10").Equal(f.s.articles[f.cable].QtePhysique))
	assert.True(t, f.s.commandesClient[f.commande].Lignes[0].QuantiteLivree.IsZero())
}

func TestLivraison_ModifierReimpute(t *testing.T) {
	f := newLivraisonFixture(t, true)
	first := f.livrer(t, "3")

	resp, err := f.livraisons.Modifier(context.Background(), uuid.MustParse(first.ID),
		dto.ModifierLivraisonRequest{Lignes: []dto.LigneLivraisonRequest{ligneBL(f.cable, "1")}})
	require.NoError(t, err)

	assert.True(t, dec("1").Equal(resp.Lignes[0].QuantiteImputee))
	assert.Equal(t, first.Lignes[0].ID, resp.Lignes[0].ID)
	assert.True(t, dec("9").Equal(f.s.articles[f.cable].QtePhysique))
	assert.True(t, dec("1").Equal(f.s.commandesClient[f.commande].Lignes[0].QuantiteLivree))
}

func TestLivraison_CommandeAnnulee(t *testing.T) {
	f := newLivraisonFixture(t, true)
	_, err := f.cmdClient.Annuler(context.Background(), f.commande)
	require.NoError(t, err)

	_, err = f.livraisons.Creer(context.Background(), dto.CreerLivraisonRequest{
		BonCommandeClientID: strPtr(f.commande.String()),
		Lignes:              []dto.LigneLivraisonRequest{ligneBL(f.cable, "1")},
	})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.True(t, dec("10").Equal(f.s.articles[f.cable].QtePhysique))
}

func TestLivraison_EnvoyerSansFile(t *testing.T) {
	f := newLivraisonFixture(t, false)
	first := f.livrer(t, "1")

	err := f.livraisons.Envoyer(context.Background(), uuid.MustParse(first.ID), "client@sfax.tn")
	assert.True(t, apierror.IsKind(err, apierror.KindIndisponible))
}
