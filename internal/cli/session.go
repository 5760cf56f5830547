package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"github.com/mpoirier/tagflow/internal/common"
	"github.com/mpoirier/tagflow/internal/engine"
	"github.com/mpoirier/tagflow/internal/model"
	"github.com/mpoirier/tagflow/internal/storage"
)

// Session drives one interactive tagging session over a raw export. All
// state is explicit: the engine holds the suggestion tables, the session
// holds the row table, and every mutation flows through engine operations.
type Session struct {
	reader  *LineReader
	writer  io.Writer
	engine  *engine.Engine
	store   *storage.FileStore
	rows    []model.Transaction
	rawFile string
	month   string
	bar     *progressbar.ProgressBar
}

// NewSession creates a tagging session for the given rows.
func NewSession(eng *engine.Engine, store *storage.FileStore, rows []model.Transaction, rawFile, month string, in io.Reader, out io.Writer) *Session {
	return &Session{
		reader:  NewLineReader(in),
		writer:  out,
		engine:  eng,
		store:   store,
		rows:    rows,
		rawFile: rawFile,
		month:   month,
	}
}

// Run executes the session loop until the user saves and quits, finishes the
// month, or cancels.
func (s *Session) Run(ctx context.Context) error {
	s.bar = progressbar.NewOptions(100,
		progressbar.OptionSetWriter(s.writer),
		progressbar.OptionSetDescription("tagged amount"),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetWidth(30),
	)

	fmt.Fprintln(s.writer, FormatTitle(fmt.Sprintf("Tagging %s", s.rawFile)))

	for {
		s.showProgress()

		vendors := s.engine.UntaggedVendors(s.rows)
		if len(vendors) == 0 {
			fmt.Fprintln(s.writer, FormatSuccess("All transactions tagged."))
		} else {
			s.renderVendors(vendors)
		}

		fmt.Fprintln(s.writer, SubtleStyle.Render("Select vendors by number (e.g. 1,3)  ·  s=save progress  ·  f=finish month  ·  q=quit"))
		input, err := s.promptLine(ctx, "Choice")
		if err != nil {
			return err
		}

		switch strings.ToLower(input) {
		case "q":
			return nil
		case "s":
			if err := s.saveProgress(ctx); err != nil {
				fmt.Fprintln(s.writer, FormatError(err.Error()))
			}
		case "f":
			return s.finishMonth(ctx)
		default:
			selected := pickByNumber(input, len(vendors))
			if len(selected) == 0 {
				fmt.Fprintln(s.writer, FormatWarning("Nothing selected."))
				continue
			}
			names := make([]string, len(selected))
			for i, idx := range selected {
				names[i] = vendors[idx].Name
			}
			if err := s.vendorMenu(ctx, names); err != nil {
				return err
			}
		}
	}
}

// vendorMenu shows the selected vendors' untagged transactions and handles
// tagging, amount correction and deletion until the user goes back.
func (s *Session) vendorMenu(ctx context.Context, vendors []string) error {
	for {
		details := s.engine.TransactionDetails(s.rows, vendors)
		if len(details.Transactions) == 0 {
			fmt.Fprintln(s.writer, FormatSuccess("No untagged transactions left for this selection."))
			return nil
		}
		s.renderDetails(details)

		fmt.Fprintln(s.writer, SubtleStyle.Render("[a] tag all  ·  [t 2,4] tag listed  ·  [c 2] daily context  ·  [m 2 45.00] fix amount  ·  [d 2] delete  ·  [b] back"))
		input, err := s.promptLine(ctx, "Action")
		if err != nil {
			return err
		}

		fields := strings.Fields(input)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "b":
			return nil
		case "a":
			if err := s.applyToVendors(ctx, vendors); err != nil {
				return err
			}
			return nil
		case "t":
			if len(fields) < 2 {
				fmt.Fprintln(s.writer, FormatWarning("Give transaction numbers, e.g. t 2,4"))
				continue
			}
			picked := pickByNumber(fields[1], len(details.Transactions))
			ids := make([]string, len(picked))
			for i, idx := range picked {
				ids[i] = details.Transactions[idx].ID
			}
			if err := s.applyToTransactions(ctx, ids); err != nil {
				return err
			}
		case "c":
			if tx, ok := pickOne(fields, details.Transactions); ok {
				s.renderDailyContext(tx.ID)
			}
		case "m":
			if len(fields) < 3 {
				fmt.Fprintln(s.writer, FormatWarning("Give a transaction number and amount, e.g. m 2 45.00"))
				continue
			}
			tx, ok := pickOne(fields[:2], details.Transactions)
			if !ok {
				continue
			}
			s.correctAmount(tx.ID, fields[2])
		case "d":
			if tx, ok := pickOne(fields, details.Transactions); ok {
				s.deleteTransaction(tx.ID)
			}
		default:
			fmt.Fprintln(s.writer, FormatWarning("Unknown action."))
		}
	}
}

// applyToVendors runs the tag flow in vendor mode.
func (s *Session) applyToVendors(ctx context.Context, vendors []string) error {
	tags, err := s.promptTags(ctx, vendors)
	if err != nil || len(tags) == 0 {
		return err
	}

	affected := s.engine.ApplyToVendors(s.rows, vendors, tags)
	if affected == 0 {
		fmt.Fprintln(s.writer, FormatWarning("No transactions were tagged; they may already be tagged."))
		return nil
	}

	s.engine.RecordUsage(tags, vendors)
	s.persistUsage(ctx)
	fmt.Fprintln(s.writer, FormatSuccess(fmt.Sprintf("Tagged %d transaction(s) with %d tag(s).", affected, len(tags))))
	return nil
}

// applyToTransactions runs the tag flow in single/multi-transaction mode.
func (s *Session) applyToTransactions(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		fmt.Fprintln(s.writer, FormatWarning("Nothing selected."))
		return nil
	}
	tags, err := s.promptTags(ctx, nil)
	if err != nil || len(tags) == 0 {
		return err
	}

	affected, vendors := s.engine.ApplyToTransactions(s.rows, ids, tags)
	if affected == 0 {
		fmt.Fprintln(s.writer, FormatWarning("No transactions were tagged; they may already be tagged."))
		return nil
	}

	s.engine.RecordUsage(tags, vendors)
	s.persistUsage(ctx)
	fmt.Fprintln(s.writer, FormatSuccess(fmt.Sprintf("Tagged %d transaction(s).", affected)))
	return nil
}

// promptTags renders the tag cloud for the selection and reads the chosen
// tags: numbers pick suggestions, anything else is a new tag. Free-typed
// duplicates are dropped.
func (s *Session) promptTags(ctx context.Context, vendors []string) ([]string, error) {
	suggestions := s.engine.SuggestTags(vendors)

	var lines []string
	for i, sg := range suggestions {
		marker := "  "
		label := sg.Tag
		if sg.Suggested {
			marker = StarIcon + " "
			label = InfoStyle.Render(sg.Tag)
		}
		lines = append(lines, fmt.Sprintf("%3d. %s%s %s", i+1, marker, label,
			SubtleStyle.Render(fmt.Sprintf("(%d)", sg.Count))))
	}
	if len(lines) > 0 {
		fmt.Fprintln(s.writer, RenderBox("Tags", strings.Join(lines, "\n")))
	}

	input, err := s.promptLine(ctx, "Tags (numbers and/or new tags, comma-separated)")
	if err != nil {
		return nil, err
	}
	if input == "" {
		fmt.Fprintln(s.writer, FormatWarning("No tags given."))
		return nil, nil
	}

	var selected, typed []string
	for _, token := range model.SplitNewTags(input) {
		if n, err := strconv.Atoi(token); err == nil && n >= 1 && n <= len(suggestions) {
			selected = append(selected, suggestions[n-1].Tag)
		} else {
			typed = append(typed, token)
		}
	}
	return model.CombineTags(selected, typed), nil
}

// saveProgress persists tagged rows and drops them from the session table.
func (s *Session) saveProgress(ctx context.Context) error {
	saved, err := s.store.SavePartial(ctx, s.rows, s.rawFile)
	if err != nil {
		return common.NewUserError("failed to save progress, you may retry", err)
	}
	if saved == 0 {
		fmt.Fprintln(s.writer, FormatWarning("No transactions have been tagged yet."))
		return nil
	}

	remaining := s.rows[:0]
	for i := range s.rows {
		if !s.rows[i].Tagged() {
			remaining = append(remaining, s.rows[i])
		}
	}
	s.rows = remaining

	fmt.Fprintln(s.writer, FormatSuccess(fmt.Sprintf("Saved %d tagged transaction(s); %d left for later.", saved, len(s.rows))))
	return nil
}

// finishMonth persists every remaining row, tagged or not, and closes the
// month.
func (s *Session) finishMonth(ctx context.Context) error {
	if err := s.store.FinishMonth(ctx, s.rows, s.rawFile, s.month); err != nil {
		fmt.Fprintln(s.writer, FormatError(err.Error()))
		return nil
	}
	fmt.Fprintln(s.writer, FormatSuccess(fmt.Sprintf("Month %s completed: %d transaction(s) stored.", s.month, len(s.rows))))
	s.rows = nil
	return nil
}

func (s *Session) correctAmount(id, value string) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
	if err != nil {
		fmt.Fprintln(s.writer, FormatError(fmt.Sprintf("bad amount %q", value)))
		return
	}
	if err := s.engine.CorrectAmount(s.rows, id, amount); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return // Stale selection; benign.
		}
		fmt.Fprintln(s.writer, FormatError(err.Error()))
		return
	}
	fmt.Fprintln(s.writer, FormatSuccess("Amount corrected."))
}

func (s *Session) deleteTransaction(id string) {
	rows, err := s.engine.Delete(s.rows, id)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			fmt.Fprintln(s.writer, FormatError(err.Error()))
		}
		return
	}
	s.rows = rows
	fmt.Fprintln(s.writer, FormatSuccess("Transaction deleted."))
}

func (s *Session) persistUsage(ctx context.Context) {
	if err := s.store.SaveUsageTables(ctx, s.engine); err != nil {
		fmt.Fprintln(s.writer, FormatError("failed to save tag tables: "+err.Error()))
	}
}

func (s *Session) showProgress() {
	p := s.engine.ComputeProgress(s.rows)
	_ = s.bar.Set(int(p.Percent))
	fmt.Fprintf(s.writer, "\n%s\n", SubtleStyle.Render(fmt.Sprintf(
		"%d/%d transactions tagged · %s of %s (%.1f%%)",
		p.TaggedCount, p.TotalCount,
		p.TaggedAmount.StringFixed(2), p.TotalAmount.StringFixed(2), p.Percent)))
}

func (s *Session) renderVendors(vendors []engine.VendorSummary) {
	var lines []string
	for i, v := range vendors {
		marker := "  "
		if v.Known {
			marker = KnownIcon + " "
		}
		lines = append(lines, fmt.Sprintf("%3d. %s%-40s %10s  (%d)",
			i+1, marker, v.Name, v.Amount.StringFixed(2), v.Count))
	}
	fmt.Fprintln(s.writer, RenderBox("Untagged vendors", strings.Join(lines, "\n")))
}

func (s *Session) renderDetails(details engine.Details) {
	var lines []string
	for i, tx := range details.Transactions {
		lines = append(lines, fmt.Sprintf("%3d. %s  %10s  %s",
			i+1, tx.Date.Format("2006-01-02"), tx.AmountAbs.StringFixed(2), tx.Vendor))
	}
	lines = append(lines, "")
	for vendor, agg := range details.Summary {
		lines = append(lines, SubtleStyle.Render(fmt.Sprintf("%s: %d transaction(s), %s total",
			vendor, agg.Count, agg.Total.StringFixed(2))))
	}
	fmt.Fprintln(s.writer, RenderBox("Transactions", strings.Join(lines, "\n")))
}

func (s *Session) renderDailyContext(id string) {
	dayCtx, err := s.engine.DailyContext(s.rows, id)
	if err != nil {
		return
	}
	var lines []string
	for _, tx := range dayCtx.Transactions {
		status := WarningStyle.Render("untagged")
		if tx.Tagged() {
			status = SuccessStyle.Render(strings.Join(tx.Tags, ", "))
		}
		marker := "  "
		if tx.ID == id {
			marker = "👆 "
		}
		lines = append(lines, fmt.Sprintf("%s%10s  %-40s %s",
			marker, tx.AmountAbs.StringFixed(2), tx.Vendor, status))
	}
	lines = append(lines, "", SubtleStyle.Render(fmt.Sprintf(
		"%d transaction(s), %s total, %d tagged",
		len(dayCtx.Transactions), dayCtx.Total.StringFixed(2), dayCtx.TaggedCount)))
	title := "Daily context"
	if len(dayCtx.Transactions) > 0 {
		title = "Daily context for " + dayCtx.Transactions[0].Date.Format("Monday, January 2, 2006")
	}
	fmt.Fprintln(s.writer, RenderBox(title, strings.Join(lines, "\n")))
}

func (s *Session) promptLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(s.writer, FormatPrompt(prompt))
	line, err := s.reader.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, ErrInputCancelled) || errors.Is(err, io.EOF) {
			return "", err
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return line, nil
}

// pickByNumber parses "1,3" style input into zero-based indexes within
// bounds; out-of-range numbers are ignored.
func pickByNumber(input string, limit int) []int {
	var picked []int
	seen := make(map[int]struct{})
	for _, token := range strings.Split(input, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil || n < 1 || n > limit {
			continue
		}
		if _, dup := seen[n-1]; dup {
			continue
		}
		seen[n-1] = struct{}{}
		picked = append(picked, n-1)
	}
	return picked
}

// pickOne resolves a single "cmd N" argument to a listed transaction.
func pickOne(fields []string, listed []model.Transaction) (model.Transaction, bool) {
	if len(fields) < 2 {
		return model.Transaction{}, false
	}
	picked := pickByNumber(fields[1], len(listed))
	if len(picked) != 1 {
		return model.Transaction{}, false
	}
	return listed[picked[0]], true
}
