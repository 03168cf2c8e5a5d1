package service

import (
	"context"
	"testing"

	"gescom/internal/apierror"
	"gescom/internal/dto"
	"gescom/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ligneCC(articleID uuid.UUID, quantite, livree, prix string) dto.LigneCommandeClientRequest {
	return dto.LigneCommandeClientRequest{
		ArticleID:      articleID.String(),
		Quantite:       dec(quantite),
		QuantiteLivree: dec(livree),
		PrixUnitaire:   decPtr(prix),
	}
}

func commandeClientReq(clientID uuid.UUID, lignes ...dto.LigneCommandeClientRequest) dto.CreerCommandeClientRequest {
	return dto.CreerCommandeClientRequest{ClientID: strPtr(clientID.String()), Lignes: lignes}
}

func TestCommandeClient_CreerLivrePartiellement(t *testing.T) {
	f := newFixture(fixtureOptions{})
	client := f.client()
	cable := f.article("CAB-2.5", 10)

	ligne := ligneCC(cable, "5", "2", "20")
	ligne.Remise = dec("10")
	req := commandeClientReq(client, ligne)
	req.MontantPaye = dec("50")
	resp, err := f.cmdClient.Creer(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, model.StatutPartiellementLivre, resp.Statut)
	assert.Equal(t, "Sfax Équipement", resp.Client)
	assert.True(t, dec("90").Equal(resp.Totaux.SousTotal))
	assert.True(t, dec("10").Equal(resp.Totaux.TotalRemise))
	assert.True(t, dec("17.1").Equal(resp.Totaux.TotalTVA))
	assert.True(t, dec("107.1").Equal(resp.Totaux.GrandTotal))
	assert.True(t, dec("57.1").Equal(resp.ResteAPayer))

	art := f.s.articles[cable]
	assert.True(t, dec("8").Equal(art.Qte))
	assert.True(t, dec("8").Equal(art.QtePhysique))
	assert.True(t, art.QteVirtual.IsZero())
}

func TestCommandeClient_Statuts(t *testing.T) {
	f := newFixture(fixtureOptions{})
	client := f.client()
	cable := f.article("CAB-2.5", 10)
	ctx := context.Background()

	resp, err := f.cmdClient.Creer(ctx, commandeClientReq(client, ligneCC(cable, "5", "0", "20")))
	require.NoError(t, err)
	assert.Equal(t, model.StatutConfirme, resp.Statut)
	assert.Empty(t, f.s.mouvements, "rien de livré, rien ne bouge")

	resp, err = f.cmdClient.Creer(ctx, commandeClientReq(client, ligneCC(cable, "5", "5", "20")))
	require.NoError(t, err)
	assert.Equal(t, model.StatutLivre, resp.Statut)
	assert.True(t, dec("5").Equal(f.s.articles[cable].QtePhysique))
}

func TestCommandeClient_CreerValidation(t *testing.T) {
	f := newFixture(fixtureOptions{})
	client := f.client()
	cable := f.article("CAB-2.5", 10)
	ctx := context.Background()

	_, err := f.cmdClient.Creer(ctx, dto.CreerCommandeClientRequest{Lignes: []dto.LigneCommandeClientRequest{ligneCC(cable, "1", "0", "1")}})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation), "client requis")

	_, err = f.cmdClient.Creer(ctx, commandeClientReq(client, ligneCC(cable, "2", "3", "1")))
	assert.True(t, apierror.IsKind(err, apierror.KindValidation), "livré > commandé")

	_, err = f.cmdClient.Creer(ctx, commandeClientReq(uuid.New(), ligneCC(cable, "1", "0", "1")))
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestCommandeClient_ClientWebsite(t *testing.T) {
	f := newFixture(fixtureOptions{})
	cable := f.article("CAB-2.5", 10)

	resp, err := f.cmdClient.Creer(context.Background(), dto.CreerCommandeClientRequest{
		ClientWebsiteInfo: &dto.ClientWebsiteInfo{Nom: "Amel B.", Telephone: "+216 98 000 000", Adresse: "Route de Tunis km 4"},
		Lignes:            []dto.LigneCommandeClientRequest{ligneCC(cable, "1", "0", "20")},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.ClientWebsiteID)
	assert.Nil(t, resp.ClientID)
	assert.Equal(t, "Amel B.", resp.Client)
	assert.Len(t, f.s.clientsWebsite, 1)

	_, err = f.cmdClient.Creer(context.Background(), dto.CreerCommandeClientRequest{
		ClientWebsiteInfo: &dto.ClientWebsiteInfo{Nom: "Sans adresse"},
		Lignes:            []dto.LigneCommandeClientRequest{ligneCC(cable, "1", "0", "20")},
	})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	assert.Len(t, f.s.clientsWebsite, 1)
}

func TestCommandeClient_ModifierDeplaceLeDeltaLivre(t *testing.T) {
	f := newFixture(fixtureOptions{})
	client := f.client()
	cable, disj := f.article("CAB-2.5", 10), f.article("DISJ-16", 4)
	ctx := context.Background()

	resp, err := f.cmdClient.Creer(ctx, commandeClientReq(client, ligneCC(cable, "5", "2", "20")))
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	resp, err = f.cmdClient.Modifier(ctx, id, dto.ModifierCommandeClientRequest{
		Lignes: []dto.LigneCommandeClientRequest{ligneCC(cable, "5", "5", "20"), ligneCC(disj, "1", "1", "40")},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatutLivre, resp.Statut)
	assert.True(t, dec("5").Equal(f.s.articles[cable].QtePhysique))
	assert.True(t, dec("3").Equal(f.s.articles[disj].QtePhysique))

	// Dropping a line puts its delivered quantity back.
	resp, err = f.cmdClient.Modifier(ctx, id, dto.ModifierCommandeClientRequest{
		Lignes: []dto.LigneCommandeClientRequest{ligneCC(cable, "5", "5", "20")},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Lignes, 1)
	assert.True(t, dec("4").Equal(f.s.articles[disj].QtePhysique))
}

func TestCommandeClient_LignesFigeesApresLivraison(t *testing.T) {
	f := newFixture(fixtureOptions{})
	client := f.client()
	cable := f.article("CAB-2.5", 10)
	ctx := context.Background()

	resp, err := f.cmdClient.Creer(ctx, commandeClientReq(client, ligneCC(cable, "5", "0", "20")))
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)
	_, err = f.livraisons.Creer(ctx, dto.CreerLivraisonRequest{
		BonCommandeClientID: strPtr(resp.ID),
		Lignes:              []dto.LigneLivraisonRequest{{ArticleID: cable.String(), Quantite: dec("2")}},
	})
	require.NoError(t, err)

	_, err = f.cmdClient.Modifier(ctx, id, dto.ModifierCommandeClientRequest{
		Lignes: []dto.LigneCommandeClientRequest{ligneCC(cable, "8", "0", "20")},
	})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))

	notes := "livrer le matin"
	resp, err = f.cmdClient.Modifier(ctx, id, dto.ModifierCommandeClientRequest{Notes: &notes})
	require.NoError(t, err, "l'en-tête reste modifiable")
	assert.Equal(t, &notes, resp.Notes)

	err = f.cmdClient.Supprimer(ctx, id)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestCommandeClient_AnnulerPuisSupprimer(t *testing.T) {
	f := newFixture(fixtureOptions{})
	client := f.client()
	cable := f.article("CAB-2.5", 10)
	ctx := context.Background()

	resp, err := f.cmdClient.Creer(ctx, commandeClientReq(client, ligneCC(cable, "5", "3", "20")))
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	resp, err = f.cmdClient.Annuler(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatutAnnule, resp.Statut)
	assert.True(t, dec("7").Equal(f.s.articles[cable].QtePhysique), "l'annulation ne restitue pas")

	_, err = f.cmdClient.Annuler(ctx, id)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	_, err = f.cmdClient.Modifier(ctx, id, dto.ModifierCommandeClientRequest{})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))

	require.NoError(t, f.cmdClient.Supprimer(ctx, id))
	assert.True(t, dec("10").Equal(f.s.articles[cable].QtePhysique))
	assert.Empty(t, f.s.commandesClient)
}

func TestStatutLivraison(t *testing.T) {
	l := func(q, liv string) model.BonCommandeClientLigne {
		return model.BonCommandeClientLigne{Quantite: dec(q), QuantiteLivree: dec(liv)}
	}
	assert.Equal(t, model.StatutConfirme, statutLivraison([]model.BonCommandeClientLigne{l("4", "0")}))
	assert.Equal(t, model.StatutPartiellementLivre, statutLivraison([]model.BonCommandeClientLigne{l("4", "4"), l("2", "0")}))
	assert.Equal(t, model.StatutLivre, statutLivraison([]model.BonCommandeClientLigne{l("4", "4"), l("2", "2")}))
	assert.Equal(t, model.StatutConfirme, statutLivraison(nil))
}
