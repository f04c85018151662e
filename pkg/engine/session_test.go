package engine_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sheetflow/sheetflow/pkg/document"
	"github.com/sheetflow/sheetflow/pkg/document/memdoc"
	"github.com/sheetflow/sheetflow/pkg/engine"
	"github.com/sheetflow/sheetflow/pkg/mutators"
	"github.com/sheetflow/sheetflow/pkg/schema"
	"github.com/sheetflow/sheetflow/pkg/telemetry"
)

func testSession(t *testing.T) *engine.Session {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	return engine.NewSession(schema.NewRegistry(), mutators.NewSet(logger), logger)
}

// salesWorkbook is a workbook with one Sales sheet carrying a header
// row, so tables created over it pick up real column names.
func salesWorkbook() *memdoc.Workbook {
	return memdoc.New(&memdoc.State{
		Sheets: []*memdoc.Sheet{{
			Name:  "Sales",
			Cells: map[string]string{"A1": "Region", "B1": "Product", "C1": "Amount"},
		}},
	})
}

// opsCounter wraps a workbook and counts how many times a mutator
// reached for an operation surface. Snapshot reads are not mutations
// and are not counted.
type opsCounter struct {
	*memdoc.Workbook
	calls int
}

func (c *opsCounter) Tables() document.TableOps           { c.calls++; return c.Workbook.Tables() }
func (c *opsCounter) Pivots() document.PivotOps           { c.calls++; return c.Workbook.Pivots() }
func (c *opsCounter) Slicers() document.SlicerOps         { c.calls++; return c.Workbook.Slicers() }
func (c *opsCounter) Sparklines() document.SparklineOps   { c.calls++; return c.Workbook.Sparklines() }
func (c *opsCounter) Names() document.NameOps             { c.calls++; return c.Workbook.Names() }
func (c *opsCounter) Charts() document.ChartOps           { c.calls++; return c.Workbook.Charts() }
func (c *opsCounter) Protection() document.ProtectionOps  { c.calls++; return c.Workbook.Protection() }
func (c *opsCounter) Shapes() document.ShapeOps           { c.calls++; return c.Workbook.Shapes() }
func (c *opsCounter) Comments() document.CommentOps       { c.calls++; return c.Workbook.Comments() }
func (c *opsCounter) Sheets() document.SheetOps           { c.calls++; return c.Workbook.Sheets() }
func (c *opsCounter) PageSetup() document.PageSetupOps    { c.calls++; return c.Workbook.PageSetup() }
func (c *opsCounter) Hyperlinks() document.HyperlinkOps   { c.calls++; return c.Workbook.Hyperlinks() }
func (c *opsCounter) DataTypes() document.DataTypeOps     { c.calls++; return c.Workbook.DataTypes() }
func (c *opsCounter) CondFormats() document.CondFormatOps { c.calls++; return c.Workbook.CondFormats() }
func (c *opsCounter) Ranges() document.RangeOps           { c.calls++; return c.Workbook.Ranges() }

// TestReportCoversEveryAction tests that the report carries exactly
// one outcome per submitted action, in input order, whatever mix of
// statuses the batch produces.
func TestReportCoversEveryAction(t *testing.T) {
	batch := []engine.ActionDescriptor{
		{Kind: "create_table", Sheet: "Sales", Target: "A1:C10",
			Parameters: map[string]any{"name": "Orders", "has_headers": true}},
		{Kind: "conjure_dragon", Sheet: "Sales", Target: "A1"},
		{Kind: "create_named_range", Sheet: "Sales", Target: "E1:E10",
			Parameters: map[string]any{"name": "Totals"}},
	}

	report, err := testSession(t).Execute(context.Background(), batch, salesWorkbook(), engine.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(report.Outcomes) != len(batch) {
		t.Fatalf("expected %d outcomes, got %d", len(batch), len(report.Outcomes))
	}
	for i, out := range report.Outcomes {
		if out.Index != i {
			t.Errorf("outcome %d carries index %d", i, out.Index)
		}
		if out.Kind != batch[i].Kind {
			t.Errorf("outcome %d carries kind %s, want %s", i, out.Kind, batch[i].Kind)
		}
	}

	if report.Outcomes[0].Status != engine.OutcomeApplied {
		t.Errorf("create_table: got %s, want applied", report.Outcomes[0].Status)
	}
	if report.Outcomes[1].Status != engine.OutcomeRejected {
		t.Errorf("unknown kind: got %s, want rejected", report.Outcomes[1].Status)
	}
	if report.Outcomes[1].Err == nil || report.Outcomes[1].Err.Kind != engine.ErrUnknownAction {
		t.Errorf("unknown kind: got error %+v, want %s", report.Outcomes[1].Err, engine.ErrUnknownAction)
	}
	if report.Outcomes[2].Status != engine.OutcomeApplied {
		t.Errorf("create_named_range: got %s, want applied", report.Outcomes[2].Status)
	}

	if report.Status != engine.ReportPartial {
		t.Errorf("report status = %s, want %s", report.Status, engine.ReportPartial)
	}
	if report.Summary.Applied != 2 || report.Summary.Rejected != 1 {
		t.Errorf("summary = %+v", report.Summary)
	}
}

// TestCreationPrecedesReference tests that an action referencing an
// entity a later batch sibling creates is dispatched after its
// creator, whatever the input order.
func TestCreationPrecedesReference(t *testing.T) {
	wb := salesWorkbook()
	batch := []engine.ActionDescriptor{
		{Kind: "apply_table_style", Target: "Orders",
			Parameters: map[string]any{"style": "TableStyleMedium2"}},
		{Kind: "create_slicer",
			Parameters: map[string]any{"source": "Orders", "field": "Region", "name": "ByRegion"}},
		{Kind: "create_table", Sheet: "Sales", Target: "A1:C10",
			Parameters: map[string]any{"name": "Orders", "has_headers": true}},
	}

	report, err := testSession(t).Execute(context.Background(), batch, wb, engine.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	for i, out := range report.Outcomes {
		if out.Status != engine.OutcomeApplied {
			t.Fatalf("action %d (%s) = %s (%v), want applied", i, out.Kind, out.Status, out.Err)
		}
	}

	st := wb.State()
	if len(st.Tables) != 1 || st.Tables[0].Style != "TableStyleMedium2" {
		t.Errorf("table state = %+v, want styled Orders", st.Tables)
	}
	if len(st.Slicers) != 1 || st.Slicers[0].Source != "Orders" {
		t.Errorf("slicer state = %+v, want one bound to Orders", st.Slicers)
	}
}

// TestRejectedActionsNeverTouchDocument tests that a batch rejected
// wholesale during validation and ordering reaches no operation
// surface at all.
func TestRejectedActionsNeverTouchDocument(t *testing.T) {
	doc := &opsCounter{Workbook: salesWorkbook()}
	batch := []engine.ActionDescriptor{
		{Kind: "conjure_dragon"},
		{Kind: "apply_table_style", Target: "Ghost",
			Parameters: map[string]any{"style": "TableStyleLight1"}},
		{Kind: "create_table", Sheet: "Sales", Target: "not-a-range",
			Parameters: map[string]any{"name": "Broken"}},
	}

	report, err := testSession(t).Execute(context.Background(), batch, doc, engine.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	for i, out := range report.Outcomes {
		if out.Status != engine.OutcomeRejected {
			t.Errorf("action %d (%s) = %s, want rejected", i, out.Kind, out.Status)
		}
	}
	if report.Outcomes[1].Err.Kind != engine.ErrUnresolvedDependency {
		t.Errorf("missing referent: got %s, want %s",
			report.Outcomes[1].Err.Kind, engine.ErrUnresolvedDependency)
	}

	if doc.calls != 0 {
		t.Errorf("document surfaces were reached %d times, want 0", doc.calls)
	}
	if len(doc.State().Tables) != 0 {
		t.Error("rejected batch created a table")
	}
	if report.Status != engine.ReportFailed {
		t.Errorf("report status = %s, want %s", report.Status, engine.ReportFailed)
	}
}

// TestDependentSkippedWhenCreatorFails tests that an action whose
// in-batch creator failed at dispatch is skipped with an unresolved
// dependency error instead of reaching its mutator.
func TestDependentSkippedWhenCreatorFails(t *testing.T) {
	wb := memdoc.New(&memdoc.State{
		Sheets: []*memdoc.Sheet{{Name: "Sales"}},
		Tables: []*memdoc.Table{{Name: "Blocked", Sheet: "Sales", Range: "A1:C10",
			Columns: []string{"Region", "Product", "Amount"}}},
	})
	batch := []engine.ActionDescriptor{
		// Overlaps Blocked, so the document refuses it at dispatch.
		{Kind: "create_table", Sheet: "Sales", Target: "B2:D12",
			Parameters: map[string]any{"name": "Orders"}},
		{Kind: "create_slicer",
			Parameters: map[string]any{"source": "Orders", "field": "Region"}},
	}

	report, err := testSession(t).Execute(context.Background(), batch, wb, engine.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if report.Outcomes[0].Status != engine.OutcomeFailed {
		t.Fatalf("creator = %s (%v), want failed", report.Outcomes[0].Status, report.Outcomes[0].Err)
	}
	if report.Outcomes[1].Status != engine.OutcomeSkipped {
		t.Fatalf("dependent = %s, want skipped", report.Outcomes[1].Status)
	}
	if report.Outcomes[1].Err == nil || report.Outcomes[1].Err.Kind != engine.ErrUnresolvedDependency {
		t.Errorf("dependent error = %+v, want %s", report.Outcomes[1].Err, engine.ErrUnresolvedDependency)
	}
}

// TestAbortOnFirstFailure tests both completion policies around the
// same failing action.
func TestAbortOnFirstFailure(t *testing.T) {
	blocked := func() *memdoc.Workbook {
		return memdoc.New(&memdoc.State{
			Sheets: []*memdoc.Sheet{{Name: "Sales"}},
			Tables: []*memdoc.Table{{Name: "Blocked", Sheet: "Sales", Range: "A1:C10"}},
		})
	}
	batch := []engine.ActionDescriptor{
		{Kind: "create_table", Sheet: "Sales", Target: "B2:D12",
			Parameters: map[string]any{"name": "Orders"}},
		{Kind: "create_named_range", Sheet: "Sales", Target: "F1:F10",
			Parameters: map[string]any{"name": "Totals"}},
	}

	report, err := testSession(t).Execute(context.Background(), batch, blocked(),
		engine.Options{Completion: engine.AbortOnFirstFailure})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Outcomes[1].Status != engine.OutcomeSkipped {
		t.Fatalf("after abort: got %s, want skipped", report.Outcomes[1].Status)
	}
	if report.Outcomes[1].Err == nil || report.Outcomes[1].Err.Kind != engine.ErrBatchAborted {
		t.Errorf("after abort: error = %+v, want %s", report.Outcomes[1].Err, engine.ErrBatchAborted)
	}

	report, err = testSession(t).Execute(context.Background(), batch, blocked(),
		engine.Options{Completion: engine.ContinueOnFailure})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Outcomes[1].Status != engine.OutcomeApplied {
		t.Errorf("continue on failure: got %s, want applied", report.Outcomes[1].Status)
	}
}

// TestDryRunDispatchesNothing tests that a dry run reports every
// dispatchable action as skipped and leaves the document alone, while
// still honoring in-batch creation for ordering.
func TestDryRunDispatchesNothing(t *testing.T) {
	doc := &opsCounter{Workbook: salesWorkbook()}
	batch := []engine.ActionDescriptor{
		{Kind: "create_table", Sheet: "Sales", Target: "A1:C10",
			Parameters: map[string]any{"name": "Orders", "has_headers": true}},
		{Kind: "apply_table_style", Target: "Orders",
			Parameters: map[string]any{"style": "TableStyleMedium2"}},
	}

	report, err := testSession(t).Execute(context.Background(), batch, doc,
		engine.Options{DryRun: true})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	for i, out := range report.Outcomes {
		if out.Status != engine.OutcomeSkipped {
			t.Errorf("action %d = %s (%v), want skipped", i, out.Status, out.Err)
		}
		if out.Detail == nil || !strings.Contains(out.Detail.Message, "dry run") {
			t.Errorf("action %d detail = %+v, want dry run note", i, out.Detail)
		}
	}
	if doc.calls != 0 {
		t.Errorf("dry run reached %d operation surfaces, want 0", doc.calls)
	}
	if len(doc.State().Tables) != 0 {
		t.Error("dry run created a table")
	}
}

// TestProtectedSheetRejectsMutation tests the admission gate against a
// protected sheet and the document's own wrong-password refusal.
func TestProtectedSheetRejectsMutation(t *testing.T) {
	protected := func() *memdoc.Workbook {
		return memdoc.New(&memdoc.State{
			Sheets: []*memdoc.Sheet{{Name: "Sales", Protected: true, Password: "secret"}},
		})
	}

	report, err := testSession(t).Execute(context.Background(), []engine.ActionDescriptor{
		{Kind: "create_table", Sheet: "Sales", Target: "A1:C10",
			Parameters: map[string]any{"name": "Orders"}},
	}, protected(), engine.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Outcomes[0].Status != engine.OutcomeRejected {
		t.Fatalf("protected mutation = %s, want rejected", report.Outcomes[0].Status)
	}
	if report.Outcomes[0].Err.Kind != engine.ErrSheetProtected {
		t.Errorf("protected mutation error = %s, want %s",
			report.Outcomes[0].Err.Kind, engine.ErrSheetProtected)
	}

	wb := protected()
	report, err = testSession(t).Execute(context.Background(), []engine.ActionDescriptor{
		{Kind: "unprotect_sheet", Target: "Sales",
			Parameters: map[string]any{"password": "wrong"}},
	}, wb, engine.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Outcomes[0].Status != engine.OutcomeFailed {
		t.Fatalf("wrong password = %s, want failed", report.Outcomes[0].Status)
	}
	if !strings.Contains(report.Outcomes[0].Err.Message, "wrong password") {
		t.Errorf("wrong password message = %q", report.Outcomes[0].Err.Message)
	}
	if !wb.State().Sheets[0].Protected {
		t.Error("wrong password unprotected the sheet")
	}
}

// TestProtectionFollowsEntityHostSheet tests that an entity-targeted
// action is governed by the protection of the sheet hosting the
// entity, not by the active sheet.
func TestProtectionFollowsEntityHostSheet(t *testing.T) {
	wb := memdoc.New(&memdoc.State{
		ActiveSheet: "Main",
		Sheets: []*memdoc.Sheet{
			{Name: "Main"},
			{Name: "Locked", Protected: true, Password: "secret"},
		},
		Tables: []*memdoc.Table{
			{Name: "Q", Sheet: "Locked", Range: "A1:C10"},
		},
	})

	report, err := testSession(t).Execute(context.Background(), []engine.ActionDescriptor{
		{Kind: "delete_table", Target: "Q"},
	}, wb, engine.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Outcomes[0].Status != engine.OutcomeRejected {
		t.Fatalf("delete on protected host sheet = %s, want rejected", report.Outcomes[0].Status)
	}
	if report.Outcomes[0].Err.Kind != engine.ErrSheetProtected {
		t.Errorf("error kind = %s, want %s",
			report.Outcomes[0].Err.Kind, engine.ErrSheetProtected)
	}
	if len(wb.State().Tables) != 1 {
		t.Error("table deleted despite host sheet protection")
	}
}

// TestAPILevelGate tests that an action above the document's feature
// level is rejected before ordering.
func TestAPILevelGate(t *testing.T) {
	wb := memdoc.New(&memdoc.State{
		APILevel: schema.APILevelTables,
		Sheets:   []*memdoc.Sheet{{Name: "Sales"}},
	})
	report, err := testSession(t).Execute(context.Background(), []engine.ActionDescriptor{
		{Kind: "create_pivot_table", Sheet: "Sales", Target: "A1:C10",
			Parameters: map[string]any{"name": "Summary", "destination": "E1"}},
	}, wb, engine.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Outcomes[0].Status != engine.OutcomeRejected {
		t.Fatalf("pivot = %s, want rejected", report.Outcomes[0].Status)
	}
	if report.Outcomes[0].Err.Kind != engine.ErrUnsupportedAPILevel {
		t.Errorf("pivot error = %s, want %s",
			report.Outcomes[0].Err.Kind, engine.ErrUnsupportedAPILevel)
	}
}

// TestSalesScenario tests a realistic multi-family batch end to end:
// a table with totals, a slicer on it and a tax rate defined name
// created and then updated in the same batch.
func TestSalesScenario(t *testing.T) {
	wb := salesWorkbook()
	batch := []engine.ActionDescriptor{
		{Kind: "create_table", Sheet: "Sales", Target: "A1:C10",
			Parameters: map[string]any{"name": "Orders", "has_headers": true}},
		{Kind: "add_totals_row", Target: "Orders",
			Parameters: map[string]any{"column_name": "Amount", "function": "sum"}},
		{Kind: "create_slicer",
			Parameters: map[string]any{"source": "Orders", "field": "Region", "name": "ByRegion"}},
		{Kind: "create_named_formula",
			Parameters: map[string]any{"name": "TaxRate", "formula": "=0.0825"}},
		{Kind: "update_named_range", Target: "TaxRate",
			Parameters: map[string]any{"formula": "=0.09"}},
	}

	report, err := testSession(t).Execute(context.Background(), batch, wb, engine.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	for i, out := range report.Outcomes {
		if out.Status != engine.OutcomeApplied {
			t.Fatalf("action %d (%s) = %s (%v), want applied", i, out.Kind, out.Status, out.Err)
		}
	}
	if report.Status != engine.ReportSucceeded {
		t.Errorf("report status = %s, want %s", report.Status, engine.ReportSucceeded)
	}

	st := wb.State()
	if got := st.Tables[0].Totals["Amount"]; got != "sum" {
		t.Errorf("totals row = %q, want sum", got)
	}
	if len(st.Slicers) != 1 || st.Slicers[0].Field != "Region" {
		t.Errorf("slicers = %+v", st.Slicers)
	}
	if len(st.Names) != 1 || st.Names[0].RefersTo != "=0.09" {
		t.Errorf("names = %+v, want TaxRate updated to =0.09", st.Names)
	}
}

// TestEmptyBatch tests the empty report shape.
func TestEmptyBatch(t *testing.T) {
	report, err := testSession(t).Execute(context.Background(), nil, salesWorkbook(), engine.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Status != engine.ReportEmpty {
		t.Errorf("report status = %s, want %s", report.Status, engine.ReportEmpty)
	}
	if len(report.Outcomes) != 0 || report.Summary.Total != 0 {
		t.Errorf("empty batch produced outcomes: %+v", report)
	}
}

// TestSessionPublishesTelemetryEvents tests that an instrumented run
// emits session lifecycle and per-action events to subscribers.
func TestSessionPublishesTelemetryEvents(t *testing.T) {
	cfg := telemetry.DefaultConfig()
	cfg.Logging.Level = "error"
	cfg.Events.EnableAsync = false
	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		t.Fatalf("NewTelemetry failed: %v", err)
	}

	received := make(chan telemetry.Event, 32)
	tel.Events.Subscribe(func(ev telemetry.Event) { received <- ev }, nil)

	ctx := tel.WithContext(context.Background())
	report, err := testSession(t).Execute(ctx, []engine.ActionDescriptor{
		{Kind: "create_table", Sheet: "Sales", Target: "A1:C10",
			Parameters: map[string]any{"name": "Orders"}},
		{Kind: "conjure_dragon"},
	}, salesWorkbook(), engine.Options{BatchName: "quarterly"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Status != engine.ReportPartial {
		t.Fatalf("report status = %s, want %s", report.Status, engine.ReportPartial)
	}

	want := map[string]bool{
		telemetry.EventTypeSessionStarted:   false,
		telemetry.EventTypeActionApplied:    false,
		telemetry.EventTypeActionRejected:   false,
		telemetry.EventTypeEntityCreated:    false,
		telemetry.EventTypeSessionCompleted: false,
	}
	deadline := time.After(2 * time.Second)
	for remaining := len(want); remaining > 0; {
		select {
		case ev := <-received:
			if seen, tracked := want[ev.Type]; tracked && !seen {
				want[ev.Type] = true
				remaining--
			}
		case <-deadline:
			t.Fatalf("timed out waiting for events, got %v", want)
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tel.Shutdown(sctx); err != nil {
		t.Errorf("telemetry shutdown failed: %v", err)
	}
}

// TestSessionWithoutTelemetryIsUninstrumented tests that a bare
// context runs the pipeline with no telemetry side effects.
func TestSessionWithoutTelemetryIsUninstrumented(t *testing.T) {
	report, err := testSession(t).Execute(context.Background(), []engine.ActionDescriptor{
		{Kind: "create_table", Sheet: "Sales", Target: "A1:C10",
			Parameters: map[string]any{"name": "Orders"}},
	}, salesWorkbook(), engine.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Status != engine.ReportSucceeded {
		t.Fatalf("report status = %s, want %s", report.Status, engine.ReportSucceeded)
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
