package worker

// document_worker.go
// Processes QueueDocument jobs: loads a purchase order or delivery note,
// renders it with fpdf into the PDF storage directory and, when a recipient
// was given, enqueues the email carrying the file.

import (
	"context"
	"encoding/json"
	"fmt"

	"gescom/internal/infra"
	"gescom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Document families accepted by the document worker.
const (
	DocumentBonCommande  = "bon_commande"
	DocumentBonLivraison = "bon_livraison"
)

// DocumentPayload is the job envelope sent to QueueDocument.
type DocumentPayload struct {
	Document string `json:"document"`
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
}

// EmailEnqueuer is the part of the Dispatcher the document worker needs.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type DocumentWorker struct {
	commandes      repository.BonCommandeRepository
	livraisons     repository.BonLivraisonRepository
	emails         EmailEnqueuer
	pdfStoragePath string
	emetteur       string
}

// NewDocumentWorker wires the repositories and the email queue.
func NewDocumentWorker(
	commandes repository.BonCommandeRepository,
	livraisons repository.BonLivraisonRepository,
	emails EmailEnqueuer,
	pdfStoragePath string,
	emetteur string,
) *DocumentWorker {
	return &DocumentWorker{
		commandes:      commandes,
		livraisons:     livraisons,
		emails:         emails,
		pdfStoragePath: pdfStoragePath,
		emetteur:       emetteur,
	}
}

func (w *DocumentWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload DocumentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("document_worker: invalid payload: %w", err)
	}
	id, err := uuid.Parse(payload.ID)
	if err != nil {
		return fmt.Errorf("document_worker: invalid id %q", payload.ID)
	}

	var pdfPath, numero, titre string
	switch payload.Document {
	case DocumentBonCommande:
		bc, err := w.commandes.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("document_worker: bon de commande %s: %w", id, err)
		}
		numero, titre = bc.NumeroCommande, "Bon de commande"
		pdfPath, err = infra.GenerateBonCommandePDF(bc, w.emetteur, w.pdfStoragePath)
		if err != nil {
			return err
		}
	case DocumentBonLivraison:
		bl, err := w.livraisons.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("document_worker: bon de livraison %s: %w", id, err)
		}
		numero, titre = bl.NumeroLivraison, "Bon de livraison"
		pdfPath, err = infra.GenerateBonLivraisonPDF(bl, w.emetteur, w.pdfStoragePath)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("document_worker: type de document inconnu %q", payload.Document)
	}
	log.Info().Str("pdf", pdfPath).Str("numero", numero).Msg("document_worker: PDF generated")

	if payload.Email == "" {
		return nil
	}
	emailJob := EmailJobPayload{
		ToEmail: payload.Email,
		Subject: fmt.Sprintf("%s %s - %s", titre, numero, w.emetteur),
		Body:    fmt.Sprintf("Bonjour,\n\nVeuillez trouver ci-joint le %s %s.\n\nCordialement,\n%s", titre, numero, w.emetteur),
		PDFPath: pdfPath,
	}
	if err := w.emails.EnqueueEmail(ctx, emailJob); err != nil {
		return fmt.Errorf("document_worker: enqueue email: %w", err)
	}
	log.Info().Str("email", payload.Email).Str("numero", numero).Msg("document_worker: email job enqueued")
	return nil
}
