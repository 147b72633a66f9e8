package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/product"
	"stockbook/internal/domain/transaction"
)

// --- In-memory fakes ---

type fakeProductRepo struct {
	products map[id.ID]*product.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[id.ID]*product.Product)}
}

func (r *fakeProductRepo) snapshot() map[id.ID]*product.Product {
	out := make(map[id.ID]*product.Product, len(r.products))
	for k, v := range r.products {
		clone := *v
		out[k] = &clone
	}
	return out
}

func (r *fakeProductRepo) Create(_ context.Context, p *product.Product) error {
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, productID id.ID) (*product.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProductRepo) GetByPartNo(_ context.Context, partNo string) (*product.Product, error) {
	for _, p := range r.products {
		if p.PartNo == partNo {
			clone := *p
			return &clone, nil
		}
	}
	return nil, apperror.NewNotFound("product", partNo)
}

func (r *fakeProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.GetByID(ctx, productID)
}

func (r *fakeProductRepo) AdjustStock(_ context.Context, productID id.ID, delta int64) error {
	p, ok := r.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	if p.CurrentStock+delta < 0 {
		return apperror.NewConflict("stock adjustment rejected")
	}
	p.CurrentStock += delta
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *product.Product) error {
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, productID id.ID) error {
	delete(r.products, productID)
	return nil
}

func (r *fakeProductRepo) List(_ context.Context, _ domain.ListFilter) (domain.ListResult[*product.Product], error) {
	var result domain.ListResult[*product.Product]
	for _, p := range r.products {
		clone := *p
		result.Items = append(result.Items, &clone)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *fakeProductRepo) ExistsByPartNo(_ context.Context, partNo string) (bool, error) {
	for _, p := range r.products {
		if p.PartNo == partNo {
			return true, nil
		}
	}
	return false, nil
}

type fakeTransactionRepo struct {
	headers map[id.ID]*transaction.Transaction
	lines   map[id.ID]*transaction.Detail
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{
		headers: make(map[id.ID]*transaction.Transaction),
		lines:   make(map[id.ID]*transaction.Detail),
	}
}

func (r *fakeTransactionRepo) snapshot() (map[id.ID]*transaction.Transaction, map[id.ID]*transaction.Detail) {
	headers := make(map[id.ID]*transaction.Transaction, len(r.headers))
	for k, v := range r.headers {
		clone := *v
		headers[k] = &clone
	}
	lines := make(map[id.ID]*transaction.Detail, len(r.lines))
	for k, v := range r.lines {
		clone := *v
		lines[k] = &clone
	}
	return headers, lines
}

func (r *fakeTransactionRepo) Create(_ context.Context, t *transaction.Transaction) error {
	clone := *t
	r.headers[t.ID] = &clone
	return nil
}

func (r *fakeTransactionRepo) GetByID(_ context.Context, transactionID id.ID) (*transaction.Transaction, error) {
	t, ok := r.headers[transactionID]
	if !ok {
		return nil, apperror.NewNotFound("transaction", transactionID.String())
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTransactionRepo) GetByCode(_ context.Context, code string) (*transaction.Transaction, error) {
	for _, t := range r.headers {
		if t.Code == code {
			clone := *t
			return &clone, nil
		}
	}
	return nil, apperror.NewNotFound("transaction", code)
}

func (r *fakeTransactionRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, t := range r.headers {
		if t.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTransactionRepo) Delete(_ context.Context, transactionID id.ID) error {
	if _, ok := r.headers[transactionID]; !ok {
		return apperror.NewNotFound("transaction", transactionID.String())
	}
	delete(r.headers, transactionID)
	for lineID, d := range r.lines {
		if d.TransactionID == transactionID {
			delete(r.lines, lineID)
		}
	}
	return nil
}

func (r *fakeTransactionRepo) List(_ context.Context, _ transaction.ListFilter) (domain.ListResult[*transaction.Transaction], error) {
	var result domain.ListResult[*transaction.Transaction]
	for _, t := range r.headers {
		clone := *t
		result.Items = append(result.Items, &clone)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *fakeTransactionRepo) InsertLines(_ context.Context, lines []transaction.Detail) error {
	for _, d := range lines {
		clone := d
		r.lines[d.ID] = &clone
	}
	return nil
}

func (r *fakeTransactionRepo) GetLines(_ context.Context, transactionID id.ID) ([]transaction.Detail, error) {
	var out []transaction.Detail
	for _, d := range r.lines {
		if d.TransactionID == transactionID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) GetLine(_ context.Context, lineID id.ID) (*transaction.Detail, error) {
	d, ok := r.lines[lineID]
	if !ok {
		return nil, apperror.NewNotFound("transaction line", lineID.String())
	}
	clone := *d
	return &clone, nil
}

func (r *fakeTransactionRepo) UpdateLine(_ context.Context, d *transaction.Detail) error {
	if _, ok := r.lines[d.ID]; !ok {
		return apperror.NewNotFound("transaction line", d.ID.String())
	}
	clone := *d
	r.lines[d.ID] = &clone
	return nil
}

func (r *fakeTransactionRepo) DeleteLine(_ context.Context, lineID id.ID) error {
	if _, ok := r.lines[lineID]; !ok {
		return apperror.NewNotFound("transaction line", lineID.String())
	}
	delete(r.lines, lineID)
	return nil
}

func (r *fakeTransactionRepo) ListMovements(_ context.Context, productID id.ID, _ transaction.MovementFilter) ([]transaction.Movement, error) {
	var out []transaction.Movement
	for _, d := range r.lines {
		if d.ProductID != productID {
			continue
		}
		t := r.headers[d.TransactionID]
		out = append(out, transaction.Movement{
			LineID:        d.ID,
			TransactionID: d.TransactionID,
			Code:          t.Code,
			Type:          t.Type,
			Date:          t.Date,
			ProductID:     d.ProductID,
			Quantity:      d.Quantity,
		})
	}
	return out, nil
}

// fakeTxManager snapshots repo state before fn and restores it when fn
// fails, mimicking a database rollback.
type fakeTxManager struct {
	products     *fakeProductRepo
	transactions *fakeTransactionRepo
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	productState := m.products.snapshot()
	headerState, lineState := m.transactions.snapshot()

	if err := fn(ctx); err != nil {
		m.products.products = productState
		m.transactions.headers = headerState
		m.transactions.lines = lineState
		return err
	}
	return nil
}

// --- Test harness ---

type fixture struct {
	service      *Service
	products     *fakeProductRepo
	transactions *fakeTransactionRepo
}

func newFixture() *fixture {
	products := newFakeProductRepo()
	transactions := newFakeTransactionRepo()
	txm := &fakeTxManager{products: products, transactions: transactions}
	return &fixture{
		service:      NewService(products, transactions, txm),
		products:     products,
		transactions: transactions,
	}
}

func (f *fixture) addProduct(t *testing.T, partNo string, stock int64) *product.Product {
	t.Helper()
	p := product.New(partNo, partNo+" test part")
	p.CurrentStock = stock
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) stock(t *testing.T, productID id.ID) int64 {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.CurrentStock
}

func receipt(code string, lines ...LineInput) CreateTransactionInput {
	return CreateTransactionInput{
		Code:  code,
		Type:  transaction.TypeIn,
		Date:  time.Now().UTC(),
		Lines: lines,
	}
}

func issue(code string, lines ...LineInput) CreateTransactionInput {
	return CreateTransactionInput{
		Code:  code,
		Type:  transaction.TypeOut,
		Date:  time.Now().UTC(),
		Lines: lines,
	}
}

// --- Tests ---

func TestCreateTransaction_InIncreasesStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "BRG-6204", 0)

	created, err := f.service.CreateTransaction(ctx, receipt("GRN-001",
		LineInput{ProductID: p.ID, Quantity: 100}))
	require.NoError(t, err)

	assert.Equal(t, int64(100), f.stock(t, p.ID))
	assert.Len(t, created.Lines, 1)
	assert.Equal(t, "GRN-001", created.Code)
}

func TestCreateTransaction_OutDecreasesStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "BRG-6204", 50)

	_, err := f.service.CreateTransaction(ctx, issue("DO-001",
		LineInput{ProductID: p.ID, Quantity: 20}))
	require.NoError(t, err)

	assert.Equal(t, int64(30), f.stock(t, p.ID))
}

func TestCreateTransaction_OutToExactlyZero(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "BRG-6204", 20)

	_, err := f.service.CreateTransaction(ctx, issue("DO-001",
		LineInput{ProductID: p.ID, Quantity: 20}))
	require.NoError(t, err)

	assert.Equal(t, int64(0), f.stock(t, p.ID))
}

func TestCreateTransaction_InsufficientStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "BRG-6204", 5)

	_, err := f.service.CreateTransaction(ctx, issue("DO-001",
		LineInput{ProductID: p.ID, Quantity: 8}))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Contains(t, appErr.Message, "BRG-6204")
	assert.Contains(t, appErr.Message, "available 5")
	assert.Contains(t, appErr.Message, "required 8")

	// Nothing persisted, stock untouched.
	assert.Equal(t, int64(5), f.stock(t, p.ID))
	assert.Empty(t, f.transactions.headers)
}

func TestCreateTransaction_MultiLineAtomicity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.addProduct(t, "BRG-6204", 100)
	b := f.addProduct(t, "BLT-M8X40", 3)

	_, err := f.service.CreateTransaction(ctx, issue("DO-001",
		LineInput{ProductID: a.ID, Quantity: 10},
		LineInput{ProductID: b.ID, Quantity: 50}))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// The first line's effect must be rolled back with the rest.
	assert.Equal(t, int64(100), f.stock(t, a.ID))
	assert.Equal(t, int64(3), f.stock(t, b.ID))
	assert.Empty(t, f.transactions.headers)
	assert.Empty(t, f.transactions.lines)
}

func TestCreateTransaction_EmptyRejected(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateTransaction(context.Background(), receipt("GRN-001"))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeEmptyTransaction))
}

func TestCreateTransaction_InvalidQuantity(t *testing.T) {
	f := newFixture()
	p := f.addProduct(t, "BRG-6204", 0)

	for _, quantity := range []int64{0, -5} {
		_, err := f.service.CreateTransaction(context.Background(), receipt("GRN-001",
			LineInput{ProductID: p.ID, Quantity: quantity}))
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))
	}
}

func TestCreateTransaction_DuplicateLineProduct(t *testing.T) {
	f := newFixture()
	p := f.addProduct(t, "BRG-6204", 0)

	_, err := f.service.CreateTransaction(context.Background(), receipt("GRN-001",
		LineInput{ProductID: p.ID, Quantity: 5},
		LineInput{ProductID: p.ID, Quantity: 7}))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicateLineProduct))
}

func TestCreateTransaction_DuplicateCode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "BRG-6204", 0)

	_, err := f.service.CreateTransaction(ctx, receipt("GRN-001",
		LineInput{ProductID: p.ID, Quantity: 5}))
	require.NoError(t, err)

	_, err = f.service.CreateTransaction(ctx, receipt("GRN-001",
		LineInput{ProductID: p.ID, Quantity: 5}))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicate))

	// Only the first submission applied.
	assert.Equal(t, int64(5), f.stock(t, p.ID))
}

func TestCreateTransaction_InvalidType(t *testing.T) {
	f := newFixture()
	p := f.addProduct(t, "BRG-6204", 0)

	_, err := f.service.CreateTransaction(context.Background(), CreateTransactionInput{
		Code:  "X-001",
		Type:  "TRANSFER",
		Lines: []LineInput{{ProductID: p.ID, Quantity: 5}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCreateTransaction_UnknownProduct(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateTransaction(context.Background(), receipt("GRN-001",
		LineInput{ProductID: id.New(), Quantity: 5}))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateLine_QuantityIncrease(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "BRG-6204", 0)

	created, err := f.service.CreateTransaction(ctx, receipt("GRN-001",
		LineInput{ProductID: p.ID, Quantity: 10}))
	require.NoError(t, err)

	newQty := int64(15)
	updated, err := f.service.UpdateLine(ctx, created.Lines[0].ID, UpdateLineInput{Quantity: &newQty})
	require.NoError(t, err)

	assert.Equal(t, int64(15), updated.Quantity)
	assert.Equal(t, int64(15), f.stock(t, p.ID))
}

func TestUpdateLine_QuantityDecrease(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "BRG-6204", 100)

	created, err := f.service.CreateTransaction(ctx, issue("DO-001",
		LineInput{ProductID: p.ID, Quantity: 40}))
	require.NoError(t, err)
	require.Equal(t, int64(60), f.stock(t, p.ID))

	newQty := int64(25)
	_, err = f.service.UpdateLine(ctx, created.Lines[0].ID, UpdateLineInput{Quantity: &newQty})
	require.NoError(t, err)

	assert.Equal(t, int64(75), f.stock(t, p.ID))
}

func TestUpdateLine_ReversalInsufficient(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "BRG-6204", 0)

	// Receive 10, then consume all of it.
	created, err := f.service.CreateTransaction(ctx, receipt("GRN-001",
		LineInput{ProductID: p.ID, Quantity: 10}))
	require.NoError(t, err)

	_, err = f.service.CreateTransaction(ctx, issue("DO-001",
		LineInput{ProductID: p.ID, Quantity: 10}))
	require.NoError(t, err)

	// Shrinking the receipt would drive stock negative.
	newQty := int64(4)
	_, err = f.service.UpdateLine(ctx, created.Lines[0].ID, UpdateLineInput{Quantity: &newQty})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// Line and stock unchanged.
	assert.Equal(t, int64(0), f.stock(t, p.ID))
	line, err := f.transactions.GetLine(ctx, created.Lines[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), line.Quantity)
}

func TestUpdateLine_ProductReassignment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.addProduct(t, "BRG-6204", 0)
	b := f.addProduct(t, "BLT-M8X40", 0)

	created, err := f.service.CreateTransaction(ctx, receipt("GRN-001",
		LineInput{ProductID: a.ID, Quantity: 10}))
	require.NoError(t, err)

	updated, err := f.service.UpdateLine(ctx, created.Lines[0].ID, UpdateLineInput{ProductID: &b.ID})
	require.NoError(t, err)

	assert.Equal(t, b.ID, updated.ProductID)
	assert.Equal(t, int64(0), f.stock(t, a.ID))
	assert.Equal(t, int64(10), f.stock(t, b.ID))
}

func TestUpdateLine_ProductCollision(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.addProduct(t, "BRG-6204", 0)
	b := f.addProduct(t, "BLT-M8X40", 0)

	created, err := f.service.CreateTransaction(ctx, receipt("GRN-001",
		LineInput{ProductID: a.ID, Quantity: 10},
		LineInput{ProductID: b.ID, Quantity: 20}))
	require.NoError(t, err)

	var lineA *transaction.Detail
	for i := range created.Lines {
		if created.Lines[i].ProductID == a.ID {
			lineA = &created.Lines[i]
		}
	}
	require.NotNil(t, lineA)

	_, err = f.service.UpdateLine(ctx, lineA.ID, UpdateLineInput{ProductID: &b.ID})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicateLineProduct))

	// Stock effects untouched.
	assert.Equal(t, int64(10), f.stock(t, a.ID))
	assert.Equal(t, int64(20), f.stock(t, b.ID))
}

func TestUpdateLine_InvalidQuantity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "BRG-6204", 0)

	created, err := f.service.CreateTransaction(ctx, receipt("GRN-001",
		LineInput{ProductID: p.ID, Quantity: 10}))
	require.NoError(t, err)

	zero := int64(0)
	_, err = f.service.UpdateLine(ctx, created.Lines[0].ID, UpdateLineInput{Quantity: &zero})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))
	assert.Equal(t, int64(10), f.stock(t, p.ID))
}

func TestRemoveLine_ReversesEffect(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "BRG-6204", 100)

	created, err := f.service.CreateTransaction(ctx, issue("DO-001",
		LineInput{ProductID: p.ID, Quantity: 30}))
	require.NoError(t, err)
	require.Equal(t, int64(70), f.stock(t, p.ID))

	require.NoError(t, f.service.RemoveLine(ctx, created.Lines[0].ID))

	assert.Equal(t, int64(100), f.stock(t, p.ID))
	_, err = f.transactions.GetLine(ctx, created.Lines[0].ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRemoveLine_ReversalInsufficient(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "BRG-6204", 0)

	created, err := f.service.CreateTransaction(ctx, receipt("GRN-001",
		LineInput{ProductID: p.ID, Quantity: 10}))
	require.NoError(t, err)

	_, err = f.service.CreateTransaction(ctx, issue("DO-001",
		LineInput{ProductID: p.ID, Quantity: 7}))
	require.NoError(t, err)

	// Removing the receipt line would leave -7.
	err = f.service.RemoveLine(ctx, created.Lines[0].ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
	assert.Equal(t, int64(3), f.stock(t, p.ID))
}

func TestDeleteTransaction_ReversesAllLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.addProduct(t, "BRG-6204", 0)
	b := f.addProduct(t, "BLT-M8X40", 0)

	created, err := f.service.CreateTransaction(ctx, receipt("GRN-001",
		LineInput{ProductID: a.ID, Quantity: 10},
		LineInput{ProductID: b.ID, Quantity: 20}))
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteTransaction(ctx, created.ID))

	assert.Equal(t, int64(0), f.stock(t, a.ID))
	assert.Equal(t, int64(0), f.stock(t, b.ID))
	assert.Empty(t, f.transactions.headers)
	assert.Empty(t, f.transactions.lines)
}

func TestDeleteTransaction_ReversalInsufficient(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "BRG-6204", 0)

	created, err := f.service.CreateTransaction(ctx, receipt("GRN-001",
		LineInput{ProductID: p.ID, Quantity: 10}))
	require.NoError(t, err)

	_, err = f.service.CreateTransaction(ctx, issue("DO-001",
		LineInput{ProductID: p.ID, Quantity: 6}))
	require.NoError(t, err)

	err = f.service.DeleteTransaction(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// Document intact, stock unchanged.
	assert.Equal(t, int64(4), f.stock(t, p.ID))
	_, err = f.transactions.GetByID(ctx, created.ID)
	assert.NoError(t, err)
}

func TestDeleteTransaction_NotFound(t *testing.T) {
	f := newFixture()

	err := f.service.DeleteTransaction(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetTransaction_LoadsLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "BRG-6204", 0)

	created, err := f.service.CreateTransaction(ctx, receipt("GRN-001",
		LineInput{ProductID: p.ID, Quantity: 10}))
	require.NoError(t, err)

	got, err := f.service.GetTransaction(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Code, got.Code)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, int64(10), got.Lines[0].Quantity)
}

func TestMovementHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "BRG-6204", 0)

	_, err := f.service.CreateTransaction(ctx, receipt("GRN-001",
		LineInput{ProductID: p.ID, Quantity: 10}))
	require.NoError(t, err)
	_, err = f.service.CreateTransaction(ctx, issue("DO-001",
		LineInput{ProductID: p.ID, Quantity: 4}))
	require.NoError(t, err)

	movements, err := f.service.MovementHistory(ctx, p.ID, transaction.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, movements, 2)

	var net int64
	for i := range movements {
		net += movements[i].SignedQuantity()
	}
	assert.Equal(t, int64(6), net)
	assert.Equal(t, net, f.stock(t, p.ID))
}

func TestReceiveDispatchLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(t, "P-100", 0)

	_, err := f.service.CreateTransaction(ctx, receipt("GRN-1",
		LineInput{ProductID: p.ID, Quantity: 50}))
	require.NoError(t, err)
	assert.Equal(t, int64(50), f.stock(t, p.ID))

	_, err = f.service.CreateTransaction(ctx, issue("DO-1",
		LineInput{ProductID: p.ID, Quantity: 20}))
	require.NoError(t, err)
	assert.Equal(t, int64(30), f.stock(t, p.ID))

	_, err = f.service.CreateTransaction(ctx, issue("DO-2",
		LineInput{ProductID: p.ID, Quantity: 999}))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
	assert.Equal(t, int64(30), f.stock(t, p.ID))
}

func TestMovementHistory_UnknownProduct(t *testing.T) {
	f := newFixture()

	_, err := f.service.MovementHistory(context.Background(), id.New(), transaction.MovementFilter{})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
