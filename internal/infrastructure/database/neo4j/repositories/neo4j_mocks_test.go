package repositories

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/mock"

	infraNeo4j "github.com/turtacn/OpinionGraph/internal/infrastructure/database/neo4j"
)

// MockInfraDriver runs every unit of work against Tx unless WorkErr is set.
type MockInfraDriver struct {
	mock.Mock
	Tx      *MockInfraTransaction
	WorkErr error
}

func newMockInfraDriver() *MockInfraDriver {
	d := &MockInfraDriver{Tx: new(MockInfraTransaction)}
	d.On("ExecuteRead", mock.Anything, mock.Anything)
	d.On("ExecuteWrite", mock.Anything, mock.Anything)
	return d
}

func (m *MockInfraDriver) ExecuteRead(ctx context.Context, work infraNeo4j.TransactionWork) (any, error) {
	m.Called(ctx, work)
	if m.WorkErr != nil {
		return nil, m.WorkErr
	}
	return work(m.Tx)
}

func (m *MockInfraDriver) ExecuteWrite(ctx context.Context, work infraNeo4j.TransactionWork) (any, error) {
	m.Called(ctx, work)
	if m.WorkErr != nil {
		return nil, m.WorkErr
	}
	return work(m.Tx)
}

func (m *MockInfraDriver) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockInfraDriver) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockInfraTransaction records every statement it is asked to run.
type MockInfraTransaction struct {
	mock.Mock
}

func (m *MockInfraTransaction) Run(ctx context.Context, cypher string, params map[string]any) (infraNeo4j.Result, error) {
	args := m.Called(ctx, cypher, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(infraNeo4j.Result), args.Error(1)
}

// MockResult streams Records in order.
type MockResult struct {
	Records []*neo4j.Record
	Error   error
	current int
}

func (m *MockResult) Next(context.Context) bool {
	if m.current < len(m.Records) {
		m.current++
		return true
	}
	return false
}

func (m *MockResult) Record() *neo4j.Record {
	if m.current == 0 || m.current > len(m.Records) {
		return nil
	}
	return m.Records[m.current-1]
}

func (m *MockResult) Err() error { return m.Error }

func (m *MockResult) Consume(context.Context) (neo4j.ResultSummary, error) { return nil, m.Error }

// NewRecord builds a record from parallel keys and values.
func NewRecord(keys []string, values []any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

//Personal.AI order the ending
