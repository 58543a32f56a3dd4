package transactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/warelog/warelog/internal/platform/httpx"
	"github.com/warelog/warelog/internal/shared"
	"github.com/warelog/warelog/internal/stock"
)

// BalanceReader provides the stock reads the availability check needs.
// stock.Repository satisfies it.
type BalanceReader interface {
	GetBalance(ctx context.Context, productID, warehouseID int64, locationID string) (stock.Balance, error)
}

// Auditor records business events. shared.AuditLogger satisfies it.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service drives the transaction workflows. Every terminal transition runs
// inside a single database transaction: the status change, the balance
// updates and the ledger rows commit together or not at all.
type Service struct {
	repo     Repository
	balances BalanceReader
	audit    Auditor
	logger   *slog.Logger
}

// NewService wires the engine service.
func NewService(repo Repository, balances BalanceReader, audit Auditor, logger *slog.Logger) *Service {
	return &Service{repo: repo, balances: balances, audit: audit, logger: logger}
}

func wrongType(want Type) error {
	return fmt.Errorf("This is not a %s transaction: %w", strings.ToLower(string(want)), ErrWrongType)
}

func transition(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInvalidStatus)
}

var refNoPrefix = map[Type]string{
	TypeReceipt:    "RC",
	TypeDelivery:   "DO",
	TypeTransfer:   "TR",
	TypeAdjustment: "ADJ",
}

func newRefNo(t Type) string {
	return refNoPrefix[t] + "-" + strings.ToUpper(uuid.NewString()[:8])
}

// Create builds a transaction of the type named in the input. The dedicated
// constructors below are thin wrappers over it.
func (s *Service) Create(ctx context.Context, in CreateInput) (Details, error) {
	if !in.Type.IsValid() {
		return Details{}, fmt.Errorf("unknown transaction type %q: %w", in.Type, ErrWrongType)
	}
	return s.create(ctx, in.Type, in)
}

func (s *Service) CreateReceipt(ctx context.Context, in CreateInput) (Details, error) {
	return s.create(ctx, TypeReceipt, in)
}

func (s *Service) CreateDelivery(ctx context.Context, in CreateInput) (Details, error) {
	d, err := s.create(ctx, TypeDelivery, in)
	if err != nil {
		return Details{}, err
	}
	// A fresh delivery is immediately checked so it lands in Ready or
	// Waiting instead of sitting in Draft.
	if _, err := s.CheckAvailability(ctx, d.ID); err != nil {
		return Details{}, err
	}
	return s.Get(ctx, d.ID)
}

func (s *Service) CreateTransfer(ctx context.Context, in CreateInput) (Details, error) {
	return s.create(ctx, TypeTransfer, in)
}

func (s *Service) CreateAdjustment(ctx context.Context, in CreateInput) (Details, error) {
	return s.create(ctx, TypeAdjustment, in)
}

func (s *Service) create(ctx context.Context, typ Type, in CreateInput) (Details, error) {
	actorID := shared.ActorFromContext(ctx)
	if in.WarehouseID <= 0 {
		return Details{}, fmt.Errorf("warehouseId is required: %w", httpx.ErrValidation)
	}
	if len(in.Lines) == 0 {
		return Details{}, ErrNoLines
	}

	lines := make([]Line, 0, len(in.Lines))
	for i, li := range in.Lines {
		if li.ProductID <= 0 {
			return Details{}, fmt.Errorf("line %d: productId is required: %w", i, httpx.ErrValidation)
		}
		switch typ {
		case TypeAdjustment:
			// Adjustment lines carry a counted target quantity; zero
			// is a legal target, negative is not.
			if li.Qty < 0 || li.DoneQuantity < 0 {
				return Details{}, fmt.Errorf("line %d: %w", i, ErrInvalidQuantity)
			}
		default:
			if li.Qty <= 0 {
				return Details{}, fmt.Errorf("line %d: %w", i, ErrInvalidQuantity)
			}
		}
		if typ == TypeTransfer && (li.LocationFrom == "" || li.LocationTo == "") {
			return Details{}, fmt.Errorf("line %d: transfer needs both locations: %w", i, ErrMissingLocation)
		}
		// Receipts count later; adjustments carry the counted target
		// verbatim, so zero stays zero.
		done := li.DoneQuantity
		if typ != TypeReceipt && typ != TypeAdjustment && done == 0 {
			done = li.Qty
		}
		lines = append(lines, Line{
			ProductID:    li.ProductID,
			Qty:          li.Qty,
			DoneQuantity: done,
			LocationFrom: li.LocationFrom,
			LocationTo:   li.LocationTo,
			UnitCost:     li.UnitCost,
		})
	}

	status := StatusDraft
	if typ == TypeAdjustment {
		status = StatusPendingApproval
	}
	refNo := strings.TrimSpace(in.RefNo)
	if refNo == "" {
		refNo = newRefNo(typ)
	}

	t := Transaction{
		RefNo:       refNo,
		Type:        typ,
		Status:      status,
		WarehouseID: in.WarehouseID,
		PartnerID:   in.PartnerID,
		CreatedBy:   actorID,
		Notes:       in.Notes,
		Meta:        in.Meta,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.Insert(ctx, &t); err != nil {
			return err
		}
		inserted, err := tx.InsertLines(ctx, t.ID, lines)
		if err != nil {
			return err
		}
		t.Lines = inserted
		return nil
	})
	if err != nil {
		return Details{}, err
	}
	s.recordAudit(ctx, actorID, "transactions:create", t.ID, map[string]any{"refNo": t.RefNo, "type": t.Type})
	return s.repo.GetDetails(ctx, t.ID)
}

// Get returns a transaction with its joined display fields.
func (s *Service) Get(ctx context.Context, id int64) (Details, error) {
	return s.repo.GetDetails(ctx, id)
}

// List returns transactions matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	return s.repo.List(ctx, filter)
}

// Update rewrites the document fields and lines. Only Draft documents may
// change; lines of anything further along are frozen.
func (s *Service) Update(ctx context.Context, id int64, in CreateInput) (Details, error) {
	actorID := shared.ActorFromContext(ctx)
	if len(in.Lines) == 0 {
		return Details{}, ErrNoLines
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !t.Status.CanEdit() {
			return transition("Transaction must be in Draft status to update")
		}
		if rn := strings.TrimSpace(in.RefNo); rn != "" {
			t.RefNo = rn
		}
		if in.WarehouseID > 0 {
			t.WarehouseID = in.WarehouseID
		}
		t.PartnerID = in.PartnerID
		t.Notes = in.Notes
		if in.Meta != nil {
			t.Meta = in.Meta
		}
		if err := tx.UpdateHeader(ctx, t); err != nil {
			return err
		}
		lines := make([]Line, 0, len(in.Lines))
		for i, li := range in.Lines {
			if li.ProductID <= 0 || li.Qty < 0 {
				return fmt.Errorf("line %d: %w", i, ErrInvalidQuantity)
			}
			lines = append(lines, Line{
				ProductID:    li.ProductID,
				Qty:          li.Qty,
				DoneQuantity: li.DoneQuantity,
				LocationFrom: li.LocationFrom,
				LocationTo:   li.LocationTo,
				UnitCost:     li.UnitCost,
			})
		}
		_, err = tx.ReplaceLines(ctx, id, lines)
		return err
	})
	if err != nil {
		return Details{}, err
	}
	s.recordAudit(ctx, actorID, "transactions:update", id, nil)
	return s.repo.GetDetails(ctx, id)
}

// Delete removes a Draft document and its lines. Anything past Draft is
// immutable history and stays.
func (s *Service) Delete(ctx context.Context, id int64) error {
	actorID := shared.ActorFromContext(ctx)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !t.Status.CanDelete() {
			return transition("Transaction must be in Draft status to delete")
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "transactions:delete", id, nil)
	return nil
}

// UpdateReceiptCount records counted quantities on receipt lines and moves
// the document into Counting.
func (s *Service) UpdateReceiptCount(ctx context.Context, id int64, updates []CountUpdate) (Details, error) {
	actorID := shared.ActorFromContext(ctx)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Type != TypeReceipt {
			return wrongType(TypeReceipt)
		}
		if t.Status != StatusDraft && t.Status != StatusCounting {
			return transition("Receipt must be in Draft or Counting status")
		}
		for _, u := range updates {
			if u.DoneQuantity < 0 {
				return fmt.Errorf("line %d: %w", u.LineID, ErrInvalidQuantity)
			}
			if err := tx.UpdateLineDoneQuantity(ctx, id, u.LineID, u.DoneQuantity); err != nil {
				return err
			}
		}
		if t.Status == StatusDraft {
			return tx.UpdateStatus(ctx, id, StatusCounting)
		}
		return nil
	})
	if err != nil {
		return Details{}, err
	}
	s.recordAudit(ctx, actorID, "transactions:receipt:count", id, nil)
	return s.repo.GetDetails(ctx, id)
}

// ValidateReceipt posts the counted quantities into stock and closes the
// receipt. Each line adds doneQuantity at its destination location.
func (s *Service) ValidateReceipt(ctx context.Context, id int64) (Details, error) {
	actorID := shared.ActorFromContext(ctx)
	now := time.Now().UTC()
	var refNo string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Type != TypeReceipt {
			return wrongType(TypeReceipt)
		}
		if t.Status != StatusCounting {
			return transition("Receipt must be in Counting status to validate")
		}
		refNo = t.RefNo
		st := tx.Stock()
		for _, l := range t.Lines {
			if l.LocationTo == "" {
				return fmt.Errorf("line %d: %w", l.ID, ErrMissingLocation)
			}
			if l.DoneQuantity <= 0 {
				return fmt.Errorf("line %d: %w", l.ID, ErrInvalidQuantity)
			}
			err := applyMovement(ctx, st, stock.LedgerEntry{
				OccurredAt:    now,
				EntryType:     string(TypeReceipt),
				TransactionID: t.ID,
				ProductID:     l.ProductID,
				WarehouseID:   t.WarehouseID,
				LocationID:    l.LocationTo,
				QtyChange:     l.DoneQuantity,
				ActorID:       actorID,
				Note:          fmt.Sprintf("Receipt %s validated", t.RefNo),
			})
			if err != nil {
				return err
			}
		}
		return tx.SetValidated(ctx, id, StatusDone, actorID, now)
	})
	if err != nil {
		return Details{}, err
	}
	s.recordAudit(ctx, actorID, "transactions:receipt:validate", id, map[string]any{"refNo": refNo})
	return s.repo.GetDetails(ctx, id)
}

// CheckAvailability compares each delivery line against the balance at its
// source location. Callable in any status; only the flip is status-bound:
// when everything is available a Draft or Waiting delivery advances to
// Ready, and an incomplete Draft parks in Waiting.
func (s *Service) CheckAvailability(ctx context.Context, id int64) (AvailabilityReport, error) {
	var report AvailabilityReport
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Type != TypeDelivery {
			return wrongType(TypeDelivery)
		}

		report.AllAvailable = true
		for _, l := range t.Lines {
			available := int64(0)
			if l.LocationFrom != "" {
				bal, err := s.balances.GetBalance(ctx, l.ProductID, t.WarehouseID, l.LocationFrom)
				if err != nil && !errors.Is(err, stock.ErrBalanceNotFound) {
					return err
				}
				available = bal.Quantity
			}
			item := AvailabilityItem{
				ProductID:  l.ProductID,
				Requested:  l.Qty,
				Available:  available,
				Sufficient: available >= l.Qty,
			}
			if !item.Sufficient {
				report.AllAvailable = false
			}
			report.Items = append(report.Items, item)
		}

		switch {
		case report.AllAvailable && (t.Status == StatusDraft || t.Status == StatusWaiting):
			return tx.UpdateStatus(ctx, id, StatusReady)
		case !report.AllAvailable && t.Status == StatusDraft:
			return tx.UpdateStatus(ctx, id, StatusWaiting)
		}
		return nil
	})
	if err != nil {
		return AvailabilityReport{}, err
	}
	return report, nil
}

// MarkPacked moves a Ready delivery to Packed.
func (s *Service) MarkPacked(ctx context.Context, id int64) (Details, error) {
	actorID := shared.ActorFromContext(ctx)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Type != TypeDelivery {
			return wrongType(TypeDelivery)
		}
		if t.Status != StatusReady {
			return transition("Delivery must be in Ready status to pack")
		}
		return tx.UpdateStatus(ctx, id, StatusPacked)
	})
	if err != nil {
		return Details{}, err
	}
	s.recordAudit(ctx, actorID, "transactions:delivery:pack", id, nil)
	return s.repo.GetDetails(ctx, id)
}

// ValidateDelivery deducts each line from its source location and closes the
// delivery. A line that would take a balance negative aborts the whole
// transition.
func (s *Service) ValidateDelivery(ctx context.Context, id int64) (Details, error) {
	actorID := shared.ActorFromContext(ctx)
	now := time.Now().UTC()
	var refNo string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Type != TypeDelivery {
			return wrongType(TypeDelivery)
		}
		if t.Status != StatusPacked {
			return transition("Delivery must be in Packed status to validate")
		}
		refNo = t.RefNo
		st := tx.Stock()
		for _, l := range t.Lines {
			if l.LocationFrom == "" {
				return fmt.Errorf("line %d: %w", l.ID, ErrMissingLocation)
			}
			if l.Qty <= 0 {
				return fmt.Errorf("line %d: %w", l.ID, ErrInvalidQuantity)
			}
			err := applyMovement(ctx, st, stock.LedgerEntry{
				OccurredAt:    now,
				EntryType:     string(TypeDelivery),
				TransactionID: t.ID,
				ProductID:     l.ProductID,
				WarehouseID:   t.WarehouseID,
				LocationID:    l.LocationFrom,
				QtyChange:     -l.Qty,
				ActorID:       actorID,
				Note:          fmt.Sprintf("Delivery %s validated", t.RefNo),
			})
			if err != nil {
				return err
			}
		}
		return tx.SetValidated(ctx, id, StatusDone, actorID, now)
	})
	if err != nil {
		return Details{}, err
	}
	s.recordAudit(ctx, actorID, "transactions:delivery:validate", id, map[string]any{"refNo": refNo})
	return s.repo.GetDetails(ctx, id)
}

// ValidateTransfer moves each line between two locations of the same
// warehouse. Every line writes two ledger rows, the deduction and the
// addition, sharing one timestamp.
func (s *Service) ValidateTransfer(ctx context.Context, id int64) (Details, error) {
	actorID := shared.ActorFromContext(ctx)
	now := time.Now().UTC()
	var refNo string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Type != TypeTransfer {
			return wrongType(TypeTransfer)
		}
		if t.Status != StatusDraft {
			return transition("Transfer must be in Draft status to validate")
		}
		refNo = t.RefNo
		st := tx.Stock()
		for _, l := range t.Lines {
			if l.LocationFrom == "" || l.LocationTo == "" {
				return fmt.Errorf("line %d: %w", l.ID, ErrMissingLocation)
			}
			if l.Qty <= 0 {
				return fmt.Errorf("line %d: %w", l.ID, ErrInvalidQuantity)
			}
			note := fmt.Sprintf("Transfer %s from %s to %s", t.RefNo, l.LocationFrom, l.LocationTo)
			out := stock.LedgerEntry{
				OccurredAt:    now,
				EntryType:     string(TypeTransfer),
				TransactionID: t.ID,
				ProductID:     l.ProductID,
				WarehouseID:   t.WarehouseID,
				LocationID:    l.LocationFrom,
				QtyChange:     -l.Qty,
				ActorID:       actorID,
				Note:          note,
			}
			if err := applyMovement(ctx, st, out); err != nil {
				return err
			}
			in := out
			in.LocationID = l.LocationTo
			in.QtyChange = l.Qty
			if err := applyMovement(ctx, st, in); err != nil {
				return err
			}
		}
		return tx.SetValidated(ctx, id, StatusDone, actorID, now)
	})
	if err != nil {
		return Details{}, err
	}
	s.recordAudit(ctx, actorID, "transactions:transfer:validate", id, map[string]any{"refNo": refNo})
	return s.repo.GetDetails(ctx, id)
}

// ApproveAdjustment sets each balance to the line's counted quantity. The
// ledger records the signed difference, labelled Inventory Gain or Inventory
// Loss; a zero difference counts as a loss. A non-empty notesOverride
// replaces the transaction's notes before they are recorded in the ledger.
func (s *Service) ApproveAdjustment(ctx context.Context, id int64, notesOverride string) (Details, error) {
	actorID := shared.ActorFromContext(ctx)
	now := time.Now().UTC()
	var refNo string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Type != TypeAdjustment {
			return wrongType(TypeAdjustment)
		}
		if t.Status != StatusPendingApproval {
			return transition("Adjustment must be in Pending Approval status")
		}
		refNo = t.RefNo
		if override := strings.TrimSpace(notesOverride); override != "" {
			t.Notes = override
			if err := tx.UpdateHeader(ctx, t); err != nil {
				return err
			}
		}
		notes := strings.TrimSpace(t.Notes)
		if notes == "" {
			notes = "Stock adjustment"
		}
		st := tx.Stock()
		for _, l := range t.Lines {
			loc := l.LocationTo
			if loc == "" {
				loc = l.LocationFrom
			}
			if loc == "" {
				return fmt.Errorf("line %d: %w", l.ID, ErrMissingLocation)
			}
			target := l.DoneQuantity
			if target < 0 {
				return fmt.Errorf("line %d: %w", l.ID, ErrInvalidQuantity)
			}
			bal, err := st.GetBalanceForUpdate(ctx, l.ProductID, t.WarehouseID, loc)
			if err != nil && !errors.Is(err, stock.ErrBalanceNotFound) {
				return err
			}
			diff := target - bal.Quantity
			label := stock.LabelInventoryLoss
			if diff > 0 {
				label = stock.LabelInventoryGain
			}
			bal.Quantity = target
			if _, err := st.UpsertBalance(ctx, bal); err != nil {
				return err
			}
			entry := stock.LedgerEntry{
				OccurredAt:    now,
				EntryType:     string(TypeAdjustment),
				Label:         label,
				TransactionID: t.ID,
				ProductID:     l.ProductID,
				WarehouseID:   t.WarehouseID,
				LocationID:    loc,
				QtyChange:     diff,
				BalanceAfter:  target,
				ActorID:       actorID,
				Note:          fmt.Sprintf("%s: %s - %s", label, t.RefNo, notes),
			}
			if err := st.InsertLedgerEntry(ctx, entry); err != nil {
				return err
			}
		}
		return tx.SetValidated(ctx, id, StatusDone, actorID, now)
	})
	if err != nil {
		return Details{}, err
	}
	s.recordAudit(ctx, actorID, "transactions:adjustment:validate", id, map[string]any{"refNo": refNo})
	return s.repo.GetDetails(ctx, id)
}

// Finalize closes a Draft receipt or delivery in one step, skipping the
// intermediate workflow states. Transfers and adjustments must go through
// their dedicated transitions because finalizing them here would bypass the
// paired-location and approval semantics.
func (s *Service) Finalize(ctx context.Context, id int64) (Details, error) {
	actorID := shared.ActorFromContext(ctx)
	now := time.Now().UTC()
	var (
		refNo string
		typ   Type
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Status != StatusDraft {
			return transition("Transaction must be in Draft status to finalize")
		}
		refNo = t.RefNo
		typ = t.Type
		st := tx.Stock()
		switch t.Type {
		case TypeReceipt:
			for _, l := range t.Lines {
				if l.LocationTo == "" {
					return fmt.Errorf("line %d: %w", l.ID, ErrMissingLocation)
				}
				qty := l.DoneQuantity
				if qty == 0 {
					qty = l.Qty
				}
				if qty <= 0 {
					return fmt.Errorf("line %d: %w", l.ID, ErrInvalidQuantity)
				}
				err := applyMovement(ctx, st, stock.LedgerEntry{
					OccurredAt:    now,
					EntryType:     string(TypeReceipt),
					TransactionID: t.ID,
					ProductID:     l.ProductID,
					WarehouseID:   t.WarehouseID,
					LocationID:    l.LocationTo,
					QtyChange:     qty,
					ActorID:       actorID,
					Note:          fmt.Sprintf("Receipt %s validated", t.RefNo),
				})
				if err != nil {
					return err
				}
			}
		case TypeDelivery:
			for _, l := range t.Lines {
				if l.LocationFrom == "" {
					return fmt.Errorf("line %d: %w", l.ID, ErrMissingLocation)
				}
				if l.Qty <= 0 {
					return fmt.Errorf("line %d: %w", l.ID, ErrInvalidQuantity)
				}
				err := applyMovement(ctx, st, stock.LedgerEntry{
					OccurredAt:    now,
					EntryType:     string(TypeDelivery),
					TransactionID: t.ID,
					ProductID:     l.ProductID,
					WarehouseID:   t.WarehouseID,
					LocationID:    l.LocationFrom,
					QtyChange:     -l.Qty,
					ActorID:       actorID,
					Note:          fmt.Sprintf("Delivery %s validated", t.RefNo),
				})
				if err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("%s transactions cannot be finalized directly, use their workflow: %w", t.Type, ErrWrongType)
		}
		return tx.SetValidated(ctx, id, StatusDone, actorID, now)
	})
	if err != nil {
		return Details{}, err
	}
	s.recordAudit(ctx, actorID, fmt.Sprintf("transactions:%s:validate", strings.ToLower(string(typ))), id, map[string]any{"refNo": refNo})
	return s.repo.GetDetails(ctx, id)
}

// applyMovement locks the balance, applies the signed change and appends the
// ledger row. BalanceAfter is filled here.
func applyMovement(ctx context.Context, st stock.TxStore, entry stock.LedgerEntry) error {
	bal, err := st.GetBalanceForUpdate(ctx, entry.ProductID, entry.WarehouseID, entry.LocationID)
	if err != nil && !errors.Is(err, stock.ErrBalanceNotFound) {
		return err
	}
	next := bal.Quantity + entry.QtyChange
	if next < 0 {
		return fmt.Errorf("product %d at %s: %w", entry.ProductID, entry.LocationID, stock.ErrInsufficientStock)
	}
	bal.Quantity = next
	if _, err := st.UpsertBalance(ctx, bal); err != nil {
		return err
	}
	entry.BalanceAfter = next
	return st.InsertLedgerEntry(ctx, entry)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	log := shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "transaction",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	}
	if err := s.audit.Record(ctx, log); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", "action", action, "transaction_id", id, "error", err)
	}
}
