package transactions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warelog/warelog/internal/stock"
)

type memoryRepo struct {
	transactions map[int64]Transaction
	balances     map[string]stock.Balance
	ledger       []stock.LedgerEntry
	refNos       map[string]int64
	nextID       int64
	nextLineID   int64
	nextBalID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		transactions: make(map[int64]Transaction),
		balances:     make(map[string]stock.Balance),
		refNos:       make(map[string]int64),
	}
}

func balKey(productID, warehouseID int64, locationID string) string {
	return fmt.Sprintf("%d:%d:%s", productID, warehouseID, locationID)
}

type memorySnapshot struct {
	transactions map[int64]Transaction
	balances     map[string]stock.Balance
	ledger       []stock.LedgerEntry
	refNos       map[string]int64
	nextID       int64
	nextLineID   int64
	nextBalID    int64
}

func (r *memoryRepo) snapshot() memorySnapshot {
	s := memorySnapshot{
		transactions: make(map[int64]Transaction, len(r.transactions)),
		balances:     make(map[string]stock.Balance, len(r.balances)),
		ledger:       append([]stock.LedgerEntry(nil), r.ledger...),
		refNos:       make(map[string]int64, len(r.refNos)),
		nextID:       r.nextID,
		nextLineID:   r.nextLineID,
		nextBalID:    r.nextBalID,
	}
	for id, t := range r.transactions {
		t.Lines = append([]Line(nil), t.Lines...)
		s.transactions[id] = t
	}
	for k, b := range r.balances {
		s.balances[k] = b
	}
	for k, v := range r.refNos {
		s.refNos[k] = v
	}
	return s
}

func (r *memoryRepo) restore(s memorySnapshot) {
	r.transactions = s.transactions
	r.balances = s.balances
	r.ledger = s.ledger
	r.refNos = s.refNos
	r.nextID = s.nextID
	r.nextLineID = s.nextLineID
	r.nextBalID = s.nextBalID
}

// WithTx mimics transactional behaviour: any error rolls every mutation back.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snap := r.snapshot()
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Transaction, error) {
	t, ok := r.transactions[id]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	t.Lines = append([]Line(nil), t.Lines...)
	return t, nil
}

func (r *memoryRepo) GetDetails(ctx context.Context, id int64) (Details, error) {
	t, err := r.Get(ctx, id)
	if err != nil {
		return Details{}, err
	}
	d := Details{Transaction: t}
	for _, l := range t.Lines {
		d.LineDetails = append(d.LineDetails, LineDetails{Line: l})
	}
	return d, nil
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	var out []Transaction
	for _, t := range r.transactions {
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// GetBalance satisfies BalanceReader.
func (r *memoryRepo) GetBalance(ctx context.Context, productID, warehouseID int64, locationID string) (stock.Balance, error) {
	if b, ok := r.balances[balKey(productID, warehouseID, locationID)]; ok {
		return b, nil
	}
	return stock.Balance{ProductID: productID, WarehouseID: warehouseID, LocationID: locationID}, stock.ErrBalanceNotFound
}

func (r *memoryRepo) setBalance(productID, warehouseID int64, locationID string, qty int64) {
	r.nextBalID++
	r.balances[balKey(productID, warehouseID, locationID)] = stock.Balance{
		ID: r.nextBalID, ProductID: productID, WarehouseID: warehouseID,
		LocationID: locationID, Quantity: qty,
	}
}

type memoryTx struct {
	repo *memoryRepo
}

func (tx *memoryTx) Insert(ctx context.Context, t *Transaction) error {
	if _, dup := tx.repo.refNos[t.RefNo]; dup {
		return ErrDuplicateRefNo
	}
	tx.repo.nextID++
	t.ID = tx.repo.nextID
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	tx.repo.refNos[t.RefNo] = t.ID
	tx.repo.transactions[t.ID] = *t
	return nil
}

func (tx *memoryTx) InsertLines(ctx context.Context, txID int64, lines []Line) ([]Line, error) {
	t, ok := tx.repo.transactions[txID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		tx.repo.nextLineID++
		l.ID = tx.repo.nextLineID
		out = append(out, l)
	}
	t.Lines = append(t.Lines, out...)
	tx.repo.transactions[txID] = t
	return out, nil
}

func (tx *memoryTx) GetForUpdate(ctx context.Context, id int64) (Transaction, error) {
	return tx.repo.Get(ctx, id)
}

func (tx *memoryTx) UpdateHeader(ctx context.Context, t Transaction) error {
	cur, ok := tx.repo.transactions[t.ID]
	if !ok {
		return ErrNotFound
	}
	if owner, dup := tx.repo.refNos[t.RefNo]; dup && owner != t.ID {
		return ErrDuplicateRefNo
	}
	delete(tx.repo.refNos, cur.RefNo)
	tx.repo.refNos[t.RefNo] = t.ID
	t.Lines = cur.Lines
	t.UpdatedAt = time.Now().UTC()
	tx.repo.transactions[t.ID] = t
	return nil
}

func (tx *memoryTx) ReplaceLines(ctx context.Context, txID int64, lines []Line) ([]Line, error) {
	t, ok := tx.repo.transactions[txID]
	if !ok {
		return nil, ErrNotFound
	}
	t.Lines = nil
	tx.repo.transactions[txID] = t
	return tx.InsertLines(ctx, txID, lines)
}

func (tx *memoryTx) UpdateStatus(ctx context.Context, id int64, status Status) error {
	t, ok := tx.repo.transactions[id]
	if !ok {
		return ErrNotFound
	}
	t.Status = status
	tx.repo.transactions[id] = t
	return nil
}

func (tx *memoryTx) UpdateLineDoneQuantity(ctx context.Context, txID, lineID, done int64) error {
	t, ok := tx.repo.transactions[txID]
	if !ok {
		return ErrNotFound
	}
	for i := range t.Lines {
		if t.Lines[i].ID == lineID {
			t.Lines[i].DoneQuantity = done
			tx.repo.transactions[txID] = t
			return nil
		}
	}
	// Unmatched line ids are ignored.
	return nil
}

func (tx *memoryTx) SetValidated(ctx context.Context, id int64, status Status, actorID int64, at time.Time) error {
	t, ok := tx.repo.transactions[id]
	if !ok {
		return ErrNotFound
	}
	t.Status = status
	t.ValidatedBy = &actorID
	t.ValidatedAt = &at
	tx.repo.transactions[id] = t
	return nil
}

func (tx *memoryTx) Delete(ctx context.Context, id int64) error {
	t, ok := tx.repo.transactions[id]
	if !ok {
		return ErrNotFound
	}
	delete(tx.repo.refNos, t.RefNo)
	delete(tx.repo.transactions, id)
	return nil
}

func (tx *memoryTx) Stock() stock.TxStore {
	return &memoryStock{repo: tx.repo}
}

type memoryStock struct {
	repo *memoryRepo
}

func (s *memoryStock) GetBalanceForUpdate(ctx context.Context, productID, warehouseID int64, locationID string) (stock.Balance, error) {
	return s.repo.GetBalance(ctx, productID, warehouseID, locationID)
}

func (s *memoryStock) UpsertBalance(ctx context.Context, balance stock.Balance) (stock.Balance, error) {
	key := balKey(balance.ProductID, balance.WarehouseID, balance.LocationID)
	if cur, ok := s.repo.balances[key]; ok {
		balance.ID = cur.ID
	} else {
		s.repo.nextBalID++
		balance.ID = s.repo.nextBalID
	}
	balance.LastUpdated = time.Now().UTC()
	s.repo.balances[key] = balance
	return balance, nil
}

func (s *memoryStock) InsertLedgerEntry(ctx context.Context, entry stock.LedgerEntry) error {
	entry.ID = int64(len(s.repo.ledger) + 1)
	s.repo.ledger = append(s.repo.ledger, entry)
	return nil
}

func newTestService(repo *memoryRepo) *Service {
	return NewService(repo, repo, nil, nil)
}

func TestReceiptWorkflow(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateReceipt(ctx, CreateInput{
		RefNo:       "RC-1001",
		WarehouseID: 1,
		Lines: []LineInput{
			{ProductID: 7, Qty: 10, LocationTo: "A-01"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, created.Status)
	require.Equal(t, TypeReceipt, created.Type)
	require.Zero(t, created.Lines[0].DoneQuantity)

	counted, err := svc.UpdateReceiptCount(ctx, created.ID, []CountUpdate{
		{LineID: created.Lines[0].ID, DoneQuantity: 8},
	})
	require.NoError(t, err)
	require.Equal(t, StatusCounting, counted.Status)
	require.Equal(t, int64(8), counted.Lines[0].DoneQuantity)

	done, err := svc.ValidateReceipt(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDone, done.Status)
	require.NotNil(t, done.ValidatedAt)

	bal, err := repo.GetBalance(ctx, 7, 1, "A-01")
	require.NoError(t, err)
	require.Equal(t, int64(8), bal.Quantity)

	require.Len(t, repo.ledger, 1)
	entry := repo.ledger[0]
	require.Equal(t, "Receipt", entry.EntryType)
	require.Equal(t, int64(8), entry.QtyChange)
	require.Equal(t, int64(8), entry.BalanceAfter)
	require.Equal(t, "Receipt RC-1001 validated", entry.Note)

	_, err = svc.ValidateReceipt(ctx, created.ID)
	require.ErrorIs(t, err, ErrInvalidStatus)
	require.Len(t, repo.ledger, 1)
}

func TestReceiptValidateRequiresCounting(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateReceipt(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 5, LocationTo: "A-01"}},
	})
	require.NoError(t, err)

	_, err = svc.ValidateReceipt(ctx, created.ID)
	require.ErrorIs(t, err, ErrInvalidStatus)
	require.Contains(t, err.Error(), "Counting status")
}

func TestStatusPredicates(t *testing.T) {
	require.True(t, StatusDone.Terminal())
	require.True(t, StatusCancelled.Terminal())
	require.False(t, StatusPacked.Terminal())
	require.True(t, StatusDraft.CanEdit())
	require.False(t, StatusCounting.CanEdit())
}

func TestReceiptCountIgnoresUnknownLines(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateReceipt(ctx, CreateInput{
		WarehouseID: 1,
		Lines: []LineInput{
			{ProductID: 1, Qty: 5, LocationTo: "A-01"},
			{ProductID: 2, Qty: 3, LocationTo: "A-01"},
		},
	})
	require.NoError(t, err)

	counted, err := svc.UpdateReceiptCount(ctx, created.ID, []CountUpdate{
		{LineID: created.Lines[0].ID, DoneQuantity: 4},
		{LineID: 9999, DoneQuantity: 2},
	})
	require.NoError(t, err)
	require.Equal(t, StatusCounting, counted.Status)
	require.Equal(t, int64(4), counted.Lines[0].DoneQuantity)
	require.Zero(t, counted.Lines[1].DoneQuantity)
}

func TestDeliveryWorkflow(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.setBalance(7, 1, "A-01", 20)

	created, err := svc.CreateDelivery(ctx, CreateInput{
		RefNo:       "DO-2001",
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 7, Qty: 5, LocationFrom: "A-01"}},
	})
	require.NoError(t, err)
	require.Equal(t, StatusReady, created.Status)

	packed, err := svc.MarkPacked(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPacked, packed.Status)

	done, err := svc.ValidateDelivery(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDone, done.Status)

	bal, err := repo.GetBalance(ctx, 7, 1, "A-01")
	require.NoError(t, err)
	require.Equal(t, int64(15), bal.Quantity)

	require.Len(t, repo.ledger, 1)
	require.Equal(t, int64(-5), repo.ledger[0].QtyChange)
	require.Equal(t, "Delivery DO-2001 validated", repo.ledger[0].Note)
}

func TestDeliveryWaitingFlipsToReady(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.setBalance(7, 1, "A-01", 2)

	created, err := svc.CreateDelivery(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 7, Qty: 5, LocationFrom: "A-01"}},
	})
	require.NoError(t, err)
	require.Equal(t, StatusWaiting, created.Status)

	report, err := svc.CheckAvailability(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, report.AllAvailable)
	require.Len(t, report.Items, 1)
	require.Equal(t, int64(5), report.Items[0].Requested)
	require.Equal(t, int64(2), report.Items[0].Available)
	require.False(t, report.Items[0].Sufficient)

	repo.setBalance(7, 1, "A-01", 9)

	report, err = svc.CheckAvailability(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, report.AllAvailable)

	cur, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusReady, cur.Status)
}

func TestDeliveryPackRequiresReady(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateDelivery(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 7, Qty: 5, LocationFrom: "A-01"}},
	})
	require.NoError(t, err)
	require.Equal(t, StatusWaiting, created.Status)

	_, err = svc.MarkPacked(ctx, created.ID)
	require.ErrorIs(t, err, ErrInvalidStatus)
	require.Contains(t, err.Error(), "Ready status to pack")
}

func TestAvailabilityCheckOnPackedDelivery(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.setBalance(1, 1, "A-01", 8)

	created, err := svc.CreateDelivery(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 5, LocationFrom: "A-01"}},
	})
	require.NoError(t, err)
	require.Equal(t, StatusReady, created.Status)

	_, err = svc.MarkPacked(ctx, created.ID)
	require.NoError(t, err)

	report, err := svc.CheckAvailability(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, report.AllAvailable)
	require.Len(t, report.Items, 1)
	require.Equal(t, int64(8), report.Items[0].Available)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPacked, got.Status)
}

func TestDeliveryValidateRollsBackOnInsufficientStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.setBalance(1, 1, "A-01", 10)
	repo.setBalance(2, 1, "A-02", 10)

	created, err := svc.CreateDelivery(ctx, CreateInput{
		WarehouseID: 1,
		Lines: []LineInput{
			{ProductID: 1, Qty: 5, LocationFrom: "A-01"},
			{ProductID: 2, Qty: 5, LocationFrom: "A-02"},
		},
	})
	require.NoError(t, err)

	_, err = svc.MarkPacked(ctx, created.ID)
	require.NoError(t, err)

	// Stock for the second line vanishes after packing.
	repo.setBalance(2, 1, "A-02", 1)

	_, err = svc.ValidateDelivery(ctx, created.ID)
	require.ErrorIs(t, err, stock.ErrInsufficientStock)

	// The first line's deduction must have been rolled back.
	bal, err := repo.GetBalance(ctx, 1, 1, "A-01")
	require.NoError(t, err)
	require.Equal(t, int64(10), bal.Quantity)
	require.Empty(t, repo.ledger)

	cur, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPacked, cur.Status)
}

func TestTransferWorkflow(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.setBalance(7, 1, "A-01", 12)

	created, err := svc.CreateTransfer(ctx, CreateInput{
		RefNo:       "TR-3001",
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 7, Qty: 4, LocationFrom: "A-01", LocationTo: "B-02"}},
	})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, created.Status)

	done, err := svc.ValidateTransfer(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDone, done.Status)

	src, err := repo.GetBalance(ctx, 7, 1, "A-01")
	require.NoError(t, err)
	require.Equal(t, int64(8), src.Quantity)
	dst, err := repo.GetBalance(ctx, 7, 1, "B-02")
	require.NoError(t, err)
	require.Equal(t, int64(4), dst.Quantity)

	require.Len(t, repo.ledger, 2)
	out, in := repo.ledger[0], repo.ledger[1]
	require.Equal(t, int64(-4), out.QtyChange)
	require.Equal(t, int64(4), in.QtyChange)
	require.Equal(t, "Transfer TR-3001 from A-01 to B-02", out.Note)
	require.Equal(t, out.Note, in.Note)
	require.True(t, out.OccurredAt.Equal(in.OccurredAt))
}

func TestTransferRequiresBothLocations(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.CreateTransfer(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 7, Qty: 4, LocationFrom: "A-01"}},
	})
	require.ErrorIs(t, err, ErrMissingLocation)
}

func TestTransferInsufficientStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.setBalance(7, 1, "A-01", 3)

	created, err := svc.CreateTransfer(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 7, Qty: 4, LocationFrom: "A-01", LocationTo: "B-02"}},
	})
	require.NoError(t, err)

	_, err = svc.ValidateTransfer(ctx, created.ID)
	require.ErrorIs(t, err, stock.ErrInsufficientStock)

	bal, err := repo.GetBalance(ctx, 7, 1, "A-01")
	require.NoError(t, err)
	require.Equal(t, int64(3), bal.Quantity)
	_, err = repo.GetBalance(ctx, 7, 1, "B-02")
	require.ErrorIs(t, err, stock.ErrBalanceNotFound)
}

func TestAdjustmentGainAndLoss(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.setBalance(1, 1, "A-01", 10)
	repo.setBalance(2, 1, "A-01", 3)

	created, err := svc.CreateAdjustment(ctx, CreateInput{
		RefNo:       "ADJ-4001",
		WarehouseID: 1,
		Notes:       "cycle count",
		Lines: []LineInput{
			{ProductID: 1, Qty: 10, DoneQuantity: 4, LocationTo: "A-01"},
			{ProductID: 2, Qty: 9, DoneQuantity: 9, LocationTo: "A-01"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPendingApproval, created.Status)

	done, err := svc.ApproveAdjustment(ctx, created.ID, "")
	require.NoError(t, err)
	require.Equal(t, StatusDone, done.Status)

	first, err := repo.GetBalance(ctx, 1, 1, "A-01")
	require.NoError(t, err)
	require.Equal(t, int64(4), first.Quantity)
	second, err := repo.GetBalance(ctx, 2, 1, "A-01")
	require.NoError(t, err)
	require.Equal(t, int64(9), second.Quantity)

	require.Len(t, repo.ledger, 2)
	loss, gain := repo.ledger[0], repo.ledger[1]
	require.Equal(t, stock.LabelInventoryLoss, loss.Label)
	require.Equal(t, int64(-6), loss.QtyChange)
	require.Equal(t, "Inventory Loss: ADJ-4001 - cycle count", loss.Note)
	require.Equal(t, stock.LabelInventoryGain, gain.Label)
	require.Equal(t, int64(6), gain.QtyChange)

	_, err = svc.ApproveAdjustment(ctx, created.ID, "")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAdjustmentZeroDifferenceCountsAsLoss(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.setBalance(1, 1, "A-01", 5)

	created, err := svc.CreateAdjustment(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 5, DoneQuantity: 5, LocationTo: "A-01"}},
	})
	require.NoError(t, err)

	_, err = svc.ApproveAdjustment(ctx, created.ID, "")
	require.NoError(t, err)

	require.Len(t, repo.ledger, 1)
	require.Equal(t, stock.LabelInventoryLoss, repo.ledger[0].Label)
	require.Zero(t, repo.ledger[0].QtyChange)
	require.Equal(t, "Inventory Loss: "+created.RefNo+" - Stock adjustment", repo.ledger[0].Note)
}

func TestAdjustmentApproveNotesOverride(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.setBalance(1, 1, "A-01", 2)

	created, err := svc.CreateAdjustment(ctx, CreateInput{
		WarehouseID: 1,
		Notes:       "draft note",
		Lines:       []LineInput{{ProductID: 1, Qty: 6, DoneQuantity: 6, LocationTo: "A-01"}},
	})
	require.NoError(t, err)

	_, err = svc.ApproveAdjustment(ctx, created.ID, "recount after audit")
	require.NoError(t, err)

	require.Len(t, repo.ledger, 1)
	require.Equal(t, "Inventory Gain: "+created.RefNo+" - recount after audit", repo.ledger[0].Note)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "recount after audit", got.Notes)
}

func TestAdjustmentCountToZero(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.setBalance(1, 1, "A-01", 5)

	created, err := svc.CreateAdjustment(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 10, LocationTo: "A-01"}},
	})
	require.NoError(t, err)

	_, err = svc.ApproveAdjustment(ctx, created.ID, "")
	require.NoError(t, err)

	bal, err := repo.GetBalance(ctx, 1, 1, "A-01")
	require.NoError(t, err)
	require.Zero(t, bal.Quantity)
	require.Len(t, repo.ledger, 1)
	require.Equal(t, stock.LabelInventoryLoss, repo.ledger[0].Label)
	require.Equal(t, int64(-5), repo.ledger[0].QtyChange)
}

func TestWrongTypeGuard(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateReceipt(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 5, LocationTo: "A-01"}},
	})
	require.NoError(t, err)

	_, err = svc.MarkPacked(ctx, created.ID)
	require.ErrorIs(t, err, ErrWrongType)
	require.Contains(t, err.Error(), "This is not a delivery transaction")

	_, err = svc.ValidateTransfer(ctx, created.ID)
	require.ErrorIs(t, err, ErrWrongType)
}

func TestDuplicateRefNo(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	in := CreateInput{
		RefNo:       "RC-5001",
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 5, LocationTo: "A-01"}},
	}
	_, err := svc.CreateReceipt(ctx, in)
	require.NoError(t, err)

	_, err = svc.CreateReceipt(ctx, in)
	require.ErrorIs(t, err, ErrDuplicateRefNo)
}

func TestGeneratedRefNo(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateReceipt(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 5, LocationTo: "A-01"}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.RefNo)
	require.Contains(t, created.RefNo, "RC-")
}

func TestFinalizeReceiptUsesOrderedQty(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		Type:        TypeReceipt,
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 6, LocationTo: "A-01"}},
	})
	require.NoError(t, err)

	done, err := svc.Finalize(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDone, done.Status)

	bal, err := repo.GetBalance(ctx, 1, 1, "A-01")
	require.NoError(t, err)
	require.Equal(t, int64(6), bal.Quantity)
}

func TestFinalizeRejectsTransferAndAdjustment(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	transfer, err := svc.CreateTransfer(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 2, LocationFrom: "A-01", LocationTo: "B-01"}},
	})
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, transfer.ID)
	require.ErrorIs(t, err, ErrWrongType)
	require.Contains(t, err.Error(), "cannot be finalized directly")
}

func TestUpdateAndDeleteOnlyDraft(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.setBalance(1, 1, "A-01", 10)

	created, err := svc.CreateDelivery(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 2, LocationFrom: "A-01"}},
	})
	require.NoError(t, err)
	require.Equal(t, StatusReady, created.Status)

	_, err = svc.Update(ctx, created.ID, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 3, LocationFrom: "A-01"}},
	})
	require.ErrorIs(t, err, ErrInvalidStatus)

	err = svc.Delete(ctx, created.ID)
	require.ErrorIs(t, err, ErrInvalidStatus)

	draft, err := svc.CreateTransfer(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 1, LocationFrom: "A-01", LocationTo: "B-01"}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, draft.ID, CreateInput{
		Notes:       "rerouted",
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 2, LocationFrom: "A-01", LocationTo: "B-02"}},
	})
	require.NoError(t, err)
	require.Equal(t, "rerouted", updated.Notes)
	require.Equal(t, int64(2), updated.Lines[0].Qty)

	require.NoError(t, svc.Delete(ctx, draft.ID))
	_, err = svc.Get(ctx, draft.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

// Every balance must equal the sum of its ledger entries after any mix of
// validated transactions.
func TestLedgerReconciliation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	receipt, err := svc.CreateReceipt(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 30, LocationTo: "A-01"}},
	})
	require.NoError(t, err)
	_, err = svc.UpdateReceiptCount(ctx, receipt.ID, []CountUpdate{{LineID: receipt.Lines[0].ID, DoneQuantity: 30}})
	require.NoError(t, err)
	_, err = svc.ValidateReceipt(ctx, receipt.ID)
	require.NoError(t, err)

	transfer, err := svc.CreateTransfer(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 10, LocationFrom: "A-01", LocationTo: "B-01"}},
	})
	require.NoError(t, err)
	_, err = svc.ValidateTransfer(ctx, transfer.ID)
	require.NoError(t, err)

	delivery, err := svc.CreateDelivery(ctx, CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 5, LocationFrom: "A-01"}},
	})
	require.NoError(t, err)
	_, err = svc.MarkPacked(ctx, delivery.ID)
	require.NoError(t, err)
	_, err = svc.ValidateDelivery(ctx, delivery.ID)
	require.NoError(t, err)

	sums := make(map[string]int64)
	for _, e := range repo.ledger {
		sums[balKey(e.ProductID, e.WarehouseID, e.LocationID)] += e.QtyChange
	}
	for key, bal := range repo.balances {
		require.Equal(t, bal.Quantity, sums[key], "balance %s drifted from ledger", key)
	}

	a, err := repo.GetBalance(ctx, 1, 1, "A-01")
	require.NoError(t, err)
	require.Equal(t, int64(15), a.Quantity)
	b, err := repo.GetBalance(ctx, 1, 1, "B-01")
	require.NoError(t, err)
	require.Equal(t, int64(10), b.Quantity)
}
