package report

import (
	"context"
	"fmt"

	"surya-backend/internal/apperr"
	"surya-backend/internal/models"
	"surya-backend/internal/storage"

	"go.uber.org/zap"
)

// Entities is the slice of the entity store the generator reads and updates.
type Entities interface {
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	GetPatient(ctx context.Context, id uint) (*models.Patient, error)
	ListTestResults(ctx context.Context, orderID uint) ([]models.TestResult, error)
	SetDocumentPath(ctx context.Context, orderID uint, path string) error
}

// TokenIssuer assigns an order's public token on first use.
type TokenIssuer interface {
	Ensure(ctx context.Context, order *models.Order) (string, error)
}

// Result describes a generated report.
type Result struct {
	PDFPath    string
	PublicLink string
	Token      string
	// URL is the absolute public URL encoded in the QR code.
	URL string
}

// Generator runs the order-to-report pipeline.
type Generator struct {
	entities Entities
	tokens   TokenIssuer
	docs     storage.Store
	renderer *Renderer
	baseURL  string
	labName  string
	log      *zap.Logger
}

// NewGenerator wires a Generator. baseURL must not end with a slash.
func NewGenerator(entities Entities, tokens TokenIssuer, docs storage.Store, renderer *Renderer, baseURL, labName string, log *zap.Logger) *Generator {
	return &Generator{
		entities: entities,
		tokens:   tokens,
		docs:     docs,
		renderer: renderer,
		baseURL:  baseURL,
		labName:  labName,
		log:      log,
	}
}

// Generate renders the order's report, stores it and records its path.
// Regenerating overwrites the stored document and keeps the token.
func (g *Generator) Generate(ctx context.Context, orderID uint) (*Result, error) {
	order, err := g.entities.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	patient, err := g.entities.GetPatient(ctx, order.PatientID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Integrity(err, "order %d references missing patient %d", order.ID, order.PatientID)
		}
		return nil, err
	}

	results, err := g.entities.ListTestResults(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	tok, err := g.tokens.Ensure(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("ensure token for order %d: %w", order.ID, err)
	}
	link := PublicLink(tok)
	url := g.baseURL + link

	pdf, err := g.renderer.Render(BuildDocument(g.labName, order, patient, results, url))
	if err != nil {
		return nil, fmt.Errorf("render order %d: %w", order.ID, err)
	}

	path, err := g.docs.Put(ctx, storage.KeyForOrder(order.OrderNo), pdf)
	if err != nil {
		return nil, fmt.Errorf("store report of order %d: %w", order.ID, err)
	}
	if err := g.entities.SetDocumentPath(ctx, order.ID, path); err != nil {
		return nil, err
	}

	g.log.Info("report generated",
		zap.Uint("order_id", order.ID),
		zap.String("order_no", order.OrderNo),
		zap.Int("results", len(results)),
		zap.Int("bytes", len(pdf)),
		zap.String("path", path),
	)

	return &Result{PDFPath: path, PublicLink: link, Token: tok, URL: url}, nil
}
