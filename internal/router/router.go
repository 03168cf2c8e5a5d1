package router

import (
	"context"
	"time"

	"gescom/internal/config"
	"gescom/internal/handler"
	"gescom/internal/infra"
	"gescom/internal/middleware"
	"gescom/internal/repository"
	"gescom/internal/service"
	"gescom/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil: stock caching is then skipped and dispatch endpoints
// answer 503. ctx bounds the background purge of the rate limiter.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.ErrorHandler())
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPM, time.Minute)
	limiter.StartPurge(ctx)
	r.Use(limiter.Handler())

	// ── Repositories ─────────────────────────────────────────────────────────
	articleRepo := repository.NewArticleRepository(db)
	mouvementRepo := repository.NewMouvementStockRepository(db)
	depotRepo := repository.NewDepotRepository(db)
	stockDepotRepo := repository.NewStockDepotRepository(db)
	transfertRepo := repository.NewTransfertRepository(db)
	bonCommandeRepo := repository.NewBonCommandeRepository(db)
	bonReceptionRepo := repository.NewBonReceptionRepository(db)
	commandeClientRepo := repository.NewBonCommandeClientRepository(db)
	livraisonRepo := repository.NewBonLivraisonRepository(db)
	categorieRepo := repository.NewCategorieRepository(db)
	fournisseurRepo := repository.NewFournisseurRepository(db)
	clientRepo := repository.NewClientRepository(db)

	// Worker dispatcher, injected into services that enqueue async jobs
	var dispatcher *worker.Dispatcher
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	tx := service.NewTxRunner(db)
	cache := service.NewStockCache(rdb, cfg.StockCacheTTL)
	inventaireSvc := service.NewInventaireService(articleRepo, mouvementRepo)
	registre := service.NewRegistreDepot(stockDepotRepo, inventaireSvc)

	articleSvc := service.NewArticleService(articleRepo, stockDepotRepo)
	depotSvc := service.NewDepotService(tx, depotRepo, stockDepotRepo, transfertRepo, registre, inventaireSvc, cache)
	transfertSvc := service.NewTransfertService(tx, transfertRepo, depotRepo, registre, inventaireSvc, cache)
	bonCommandeSvc := service.NewBonCommandeService(tx, bonCommandeRepo, bonReceptionRepo, fournisseurRepo, inventaireSvc, dispatcher)
	bonReceptionSvc := service.NewBonReceptionService(tx, bonReceptionRepo, bonCommandeRepo, fournisseurRepo, inventaireSvc, cfg.ReceptionLibereReservation)
	commandeClientSvc := service.NewCommandeClientService(tx, commandeClientRepo, livraisonRepo, clientRepo, inventaireSvc)
	livraisonSvc := service.NewLivraisonService(tx, livraisonRepo, commandeClientRepo, clientRepo, inventaireSvc, dispatcher, cfg.SynchroniserLivraisons())

	// ── Handlers ─────────────────────────────────────────────────────────────
	articlesH := handler.NewArticlesHandler(articleSvc)
	mouvementsH := handler.NewMouvementsHandler(inventaireSvc)
	depotsH := handler.NewDepotsHandler(depotSvc)
	transfertsH := handler.NewTransfertsHandler(transfertSvc)
	bonsCommandeH := handler.NewBonsCommandeHandler(bonCommandeSvc)
	bonsReceptionH := handler.NewBonsReceptionHandler(bonReceptionSvc)
	commandesClientH := handler.NewCommandesClientHandler(commandeClientSvc)
	livraisonsH := handler.NewLivraisonsHandler(livraisonSvc)
	referentielH := handler.NewReferentielHandler(
		service.NewCategorieService(categorieRepo),
		service.NewFournisseurService(fournisseurRepo),
		service.NewClientService(clientRepo),
	)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Role checks only apply when tokens are verified.
	role := func(roles ...string) gin.HandlerFunc {
		if !cfg.AuthEnabled {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RequireRole(roles...)
	}
	stock := role(middleware.RoleAdmin, middleware.RoleMagasinier)
	ventes := role(middleware.RoleAdmin, middleware.RoleMagasinier, middleware.RoleCommercial)
	admin := role(middleware.RoleAdmin)

	v1 := r.Group("/v1")
	if cfg.AuthEnabled {
		v1.Use(middleware.JWTAuth(cfg.JWTSecret))
	}
	{
		articles := v1.Group("/articles")
		{
			articles.GET("", articlesH.Lister)
			articles.GET("/:id", articlesH.Obtenir)
			articles.GET("/:id/stock", articlesH.Stock)
			articles.POST("", stock, articlesH.Creer)
			articles.PUT("/:id", stock, articlesH.Modifier)
			articles.DELETE("/:id", stock, articlesH.Desactiver)
		}

		v1.GET("/mouvements-stock", mouvementsH.Lister)

		depots := v1.Group("/depots")
		{
			depots.GET("", depotsH.Lister)
			depots.GET("/:id", depotsH.Obtenir)
			depots.GET("/:id/stock", depotsH.Stock)
			depots.POST("", stock, depotsH.Creer)
			depots.PUT("/:id", stock, depotsH.Modifier)
			depots.DELETE("/:id", stock, depotsH.Supprimer)
			depots.POST("/:id/ajustements", stock, depotsH.Ajuster)
		}

		transferts := v1.Group("/transferts")
		{
			transferts.GET("", transfertsH.Lister)
			transferts.GET("/prochain-numero", transfertsH.ProchainNumero)
			transferts.GET("/:id", transfertsH.Obtenir)
			transferts.POST("", stock, transfertsH.Creer)
			transferts.PUT("/:id", stock, transfertsH.Modifier)
			transferts.PATCH("/:id/statut", stock, transfertsH.ChangerStatut)
			transferts.DELETE("/:id", stock, transfertsH.Supprimer)
		}

		bc := v1.Group("/bons-commande")
		{
			bc.GET("", bonsCommandeH.Lister)
			bc.GET("/prochain-numero", bonsCommandeH.ProchainNumero)
			bc.GET("/:id", bonsCommandeH.Obtenir)
			bc.POST("", stock, bonsCommandeH.Creer)
			bc.PUT("/:id", stock, bonsCommandeH.Modifier)
			bc.POST("/:id/annuler", stock, bonsCommandeH.Annuler)
			bc.POST("/:id/envoyer", stock, bonsCommandeH.Envoyer)
			bc.DELETE("/:id", stock, bonsCommandeH.Supprimer)
		}

		br := v1.Group("/bons-reception")
		{
			br.GET("", bonsReceptionH.Lister)
			br.GET("/prochain-numero", bonsReceptionH.ProchainNumero)
			br.GET("/:id", bonsReceptionH.Obtenir)
			br.POST("", stock, bonsReceptionH.Creer)
			br.PUT("/:id", stock, bonsReceptionH.Modifier)
			br.DELETE("/:id", stock, bonsReceptionH.Supprimer)
		}

		cc := v1.Group("/commandes-client")
		{
			cc.GET("", commandesClientH.Lister)
			cc.GET("/prochain-numero", commandesClientH.ProchainNumero)
			cc.GET("/:id", commandesClientH.Obtenir)
			cc.POST("", ventes, commandesClientH.Creer)
			cc.PUT("/:id", ventes, commandesClientH.Modifier)
			cc.POST("/:id/annuler", ventes, commandesClientH.Annuler)
			cc.DELETE("/:id", ventes, commandesClientH.Supprimer)
		}

		bl := v1.Group("/bons-livraison")
		{
			bl.GET("", livraisonsH.Lister)
			bl.GET("/prochain-numero", livraisonsH.ProchainNumero)
			bl.GET("/:id", livraisonsH.Obtenir)
			bl.POST("", ventes, livraisonsH.Creer)
			bl.PUT("/:id", ventes, livraisonsH.Modifier)
			bl.POST("/:id/annuler", ventes, livraisonsH.Annuler)
			bl.POST("/:id/envoyer", ventes, livraisonsH.Envoyer)
			bl.DELETE("/:id", ventes, livraisonsH.Supprimer)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", referentielH.ListerCategories)
			categories.POST("", admin, referentielH.CreerCategorie)
			categories.PUT("/:id", admin, referentielH.ModifierCategorie)
			categories.DELETE("/:id", admin, referentielH.DesactiverCategorie)
		}

		fournisseurs := v1.Group("/fournisseurs")
		{
			fournisseurs.GET("", referentielH.ListerFournisseurs)
			fournisseurs.GET("/:id", referentielH.ObtenirFournisseur)
			fournisseurs.POST("", stock, referentielH.CreerFournisseur)
			fournisseurs.PUT("/:id", stock, referentielH.ModifierFournisseur)
			fournisseurs.DELETE("/:id", admin, referentielH.DesactiverFournisseur)
		}

		clients := v1.Group("/clients")
		{
			clients.GET("", referentielH.ListerClients)
			clients.GET("/:id", referentielH.ObtenirClient)
			clients.POST("", ventes, referentielH.CreerClient)
			clients.PUT("/:id", ventes, referentielH.ModifierClient)
			clients.DELETE("/:id", admin, referentielH.DesactiverClient)
		}
		v1.GET("/clients-website", referentielH.ListerClientsWebsite)
	}

	return r
}
