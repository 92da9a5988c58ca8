package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/clonecrm/crm-engine/pkg/apperrors"
	"github.com/clonecrm/crm-engine/pkg/datasource"
	"github.com/clonecrm/crm-engine/pkg/llm"
	"github.com/clonecrm/crm-engine/pkg/prompts"
)

// customerByIDSQL joins the customer row with its type, type detail, city,
// and branch names. LEFT JOINs because reference rows are not guaranteed.
const customerByIDSQL = `
SELECT
    c.custid,
    c.custcode,
    c.custname,
    c.custtype,
    c.custemail,
    c.mobileno,
    c.custphone1,
    c.custaddress1,
    c.birthday,
    c.joindate,
    c.status,
    c.branchno,
    c.cityid,
    c.title,
    c.birthplace,
    c.createdate,
    ct.description AS customer_type_name,
    ctd.description AS customer_type_detail_name,
    ci.citydesc AS city_name,
    b.branchname
FROM customer c
LEFT JOIN customertype ct ON c.custtype = ct.custtype
LEFT JOIN customertypedtl ctd ON c.cgroup = ctd.custtypedetail
LEFT JOIN city ci ON c.cityid = ci.cityid
LEFT JOIN branch b ON c.branchno = b.branchno
WHERE c.custid = ?`

// Personality is the model-generated profile of a customer.
type Personality struct {
	Summary     string `json:"summary"`
	Preferences string `json:"preferences"`
}

// CustomerService reads customer records and derives personality profiles.
type CustomerService interface {
	// GetByID returns the joined customer record. Temporal fields are
	// serialized to ISO text. Missing ids yield a NotFound error.
	GetByID(ctx context.Context, customerID int64) (map[string]any, error)

	// GeneratePersonality produces an Indonesian summary and preference
	// profile from a customer record with transaction history.
	GeneratePersonality(ctx context.Context, customerData map[string]any) (*Personality, error)
}

type customerService struct {
	executor  datasource.Executor
	llmClient llm.Client
	logger    *zap.Logger
}

// NewCustomerService creates a customer service with dependencies.
func NewCustomerService(executor datasource.Executor, llmClient llm.Client, logger *zap.Logger) CustomerService {
	return &customerService{
		executor:  executor,
		llmClient: llmClient,
		logger:    logger.Named("customer"),
	}
}

func (s *customerService) GetByID(ctx context.Context, customerID int64) (map[string]any, error) {
	result, err := s.executor.QueryWithParams(ctx, customerByIDSQL, customerID)
	if err != nil {
		return nil, apperrors.Execution("Gagal mengambil data pelanggan", err)
	}

	if result.RowCount == 0 {
		s.logger.Info("Customer not found", zap.Int64("customer_id", customerID))
		return nil, apperrors.NotFound("customer not found")
	}

	customer := result.Rows[0]
	for key, value := range customer {
		if ts, ok := value.(time.Time); ok {
			customer[key] = ts.Format(time.RFC3339)
		}
	}

	s.logger.Info("Found customer", zap.Int64("customer_id", customerID))
	return customer, nil
}

func (s *customerService) GeneratePersonality(ctx context.Context, customerData map[string]any) (*Personality, error) {
	formatted, err := json.MarshalIndent(customerData, "", "  ")
	if err != nil {
		return nil, apperrors.Generation("failed to encode customer data", err)
	}

	raw, err := s.llmClient.Complete(ctx, prompts.BuildPersonalityPrompt(string(formatted)), 0.7)
	if err != nil {
		return nil, apperrors.Generation("failed to generate personality", err)
	}

	personality, err := llm.ParseJSONResponse[Personality](raw)
	if err != nil {
		return nil, apperrors.Generation("Format respons tidak valid", err)
	}
	if personality.Summary == "" || personality.Preferences == "" {
		return nil, apperrors.Generation("response missing required keys: summary, preferences", nil)
	}

	return &personality, nil
}
