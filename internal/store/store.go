// Package store persists patients, orders and test results.
// Every write is a single statement; there are no transactions spanning entities.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"surya-backend/internal/apperr"
	"surya-backend/internal/models"
	"surya-backend/internal/utils"

	"gorm.io/gorm"
)

// PatientInput is the data needed to register a patient.
type PatientInput struct {
	Name  string
	Phone *string
	Email *string
}

// TestResultInput is one test line to append to an order.
type TestResultInput struct {
	TestName string
	Result   string
	RefRange *string
}

// Store is the gorm-backed entity store.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// New returns a Store over db.
func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// CreatePatient stores a new patient. Name must be non-blank.
func (s *Store) CreatePatient(ctx context.Context, in PatientInput) (*models.Patient, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	patient := models.Patient{
		Name:  name,
		Phone: nonBlank(in.Phone),
		Email: nonBlank(in.Email),
	}
	if err := s.db.WithContext(ctx).Create(&patient).Error; err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return &patient, nil
}

// GetPatient looks up a patient by id.
func (s *Store) GetPatient(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	if err := s.db.WithContext(ctx).First(&patient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("patient not found")
		}
		return nil, fmt.Errorf("get patient %d: %w", id, err)
	}
	return &patient, nil
}

// CreateOrder opens a new order for an existing patient.
func (s *Store) CreateOrder(ctx context.Context, patientID uint) (*models.Order, error) {
	if patientID == 0 {
		return nil, apperr.Validation("patient_id is required")
	}
	if _, err := s.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}

	orderNo, err := utils.NewOrderNumber(s.now())
	if err != nil {
		return nil, err
	}

	order := models.Order{
		OrderNo:   orderNo,
		PatientID: patientID,
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// GetOrder looks up an order by id.
func (s *Store) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return &order, nil
}

// GetOrderByToken looks up the order holding the given public token.
func (s *Store) GetOrderByToken(ctx context.Context, token string) (*models.Order, error) {
	if token == "" {
		return nil, apperr.NotFound("order not found")
	}

	var order models.Order
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, fmt.Errorf("get order by token: %w", err)
	}
	return &order, nil
}

// AppendTestResults adds a batch of results to an order in one insert.
func (s *Store) AppendTestResults(ctx context.Context, orderID uint, items []TestResultInput) error {
	if len(items) == 0 {
		return apperr.Validation("at least one test result is required")
	}

	rows := make([]models.TestResult, 0, len(items))
	for i, item := range items {
		name := strings.TrimSpace(item.TestName)
		if name == "" {
			return apperr.Validation("test_name is required (item %d)", i)
		}
		rows = append(rows, models.TestResult{
			OrderID:  orderID,
			TestName: name,
			Result:   item.Result,
			RefRange: nonBlank(item.RefRange),
		})
	}

	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("append test results to order %d: %w", orderID, err)
	}
	return nil
}

// ListTestResults returns an order's results in insertion order.
func (s *Store) ListTestResults(ctx context.Context, orderID uint) ([]models.TestResult, error) {
	results := []models.TestResult{}
	if err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("list test results of order %d: %w", orderID, err)
	}
	return results, nil
}

// AssignToken sets the order's token to candidate unless one is already set,
// and returns the token the order ends up with.
func (s *Store) AssignToken(ctx context.Context, orderID uint, candidate string) (string, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND token IS NULL", orderID).
		Update("token", candidate)
	if res.Error != nil {
		return "", fmt.Errorf("assign token to order %d: %w", orderID, res.Error)
	}
	if res.RowsAffected == 1 {
		return candidate, nil
	}

	// Lost the race to another generator, or the order is gone.
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.Token == nil {
		return "", fmt.Errorf("assign token to order %d: no row updated", orderID)
	}
	return *order.Token, nil
}

// SetDocumentPath records where the order's rendered report is stored.
func (s *Store) SetDocumentPath(ctx context.Context, orderID uint, path string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("pdf_path", path)
	if res.Error != nil {
		return fmt.Errorf("set document path of order %d: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("order not found")
	}
	return nil
}

func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
