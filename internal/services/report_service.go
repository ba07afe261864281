package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sync"
	"time"

	"rental-backend/internal/ledger"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/timeutil"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
)

const (
	upcomingChequeWindow = 90 * 24 * time.Hour
	expiringLeaseWindow  = 90 * 24 * time.Hour
	dashboardOverdueMax  = 20
)

// ReportService builds the dashboard, collection summaries, the manager
// portfolio rollup and owner statement exports. Everything is recomputed
// from the ledger on every call; nothing here is cached or materialized.
type ReportService struct {
	DB           *pgxpool.Pool
	ScheduleRepo *repositories.ScheduleRepository
	PaymentRepo  *repositories.PaymentRepository
	ChequeRepo   *repositories.ChequeRepository
	LeaseRepo    *repositories.LeaseRepository
	PropertyRepo *repositories.PropertyRepository
	UserRepo     *repositories.UserRepository
	Clock        timeutil.Clock
}

func NewReportService(
	db *pgxpool.Pool,
	scheduleRepo *repositories.ScheduleRepository,
	paymentRepo *repositories.PaymentRepository,
	chequeRepo *repositories.ChequeRepository,
	leaseRepo *repositories.LeaseRepository,
	propertyRepo *repositories.PropertyRepository,
	userRepo *repositories.UserRepository,
	clock timeutil.Clock,
) *ReportService {
	if clock == nil {
		clock = timeutil.System
	}
	return &ReportService{
		DB:           db,
		ScheduleRepo: scheduleRepo,
		PaymentRepo:  paymentRepo,
		ChequeRepo:   chequeRepo,
		LeaseRepo:    leaseRepo,
		PropertyRepo: propertyRepo,
		UserRepo:     userRepo,
		Clock:        clock,
	}
}

// CollectionWindow computes expected vs received for obligations falling
// due inside [from, to]. Recognition is obligation-level: an obligation
// counts as received only once it is fully paid, partial money does not
// count until then.
func (s *ReportService) CollectionWindow(ctx context.Context, ownerID, propertyID int, from, to time.Time) (*models.CollectionSummary, error) {
	schedules, err := s.ScheduleRepo.ListByOwnerWindow(ctx, ownerID, propertyID, from, to)
	if err != nil {
		return nil, err
	}

	summary := &models.CollectionSummary{
		WindowStart: from,
		WindowEnd:   to,
		Expected:    decimal.Zero,
		Received:    decimal.Zero,
	}
	now := s.Clock.Now()
	for _, sched := range schedules {
		matched := decimal.Zero
		if sched.PaidAmount.Valid {
			matched = sched.PaidAmount.Decimal
		}
		summary.Expected = summary.Expected.Add(sched.ExpectedAmount)
		summary.ObligationCnt++
		if ledger.ComputeStatus(sched.ExpectedAmount, matched, sched.DueDate, now) == models.ScheduleStatusPaid {
			summary.Received = summary.Received.Add(sched.ExpectedAmount)
			summary.PaidCnt++
		}
	}
	return summary, nil
}

// MonthSummary is CollectionWindow over one calendar month
func (s *ReportService) MonthSummary(ctx context.Context, ownerID, propertyID, year int, month time.Month) (*models.CollectionSummary, error) {
	anchor := time.Date(year, month, 1, 0, 0, 0, 0, timeutil.GST)
	return s.CollectionWindow(ctx, ownerID, propertyID, timeutil.StartOfMonth(anchor), timeutil.EndOfMonth(anchor))
}

// QuarterSummary is CollectionWindow over the calendar quarter containing anchor
func (s *ReportService) QuarterSummary(ctx context.Context, ownerID, propertyID int, anchor time.Time) (*models.CollectionSummary, error) {
	return s.CollectionWindow(ctx, ownerID, propertyID, timeutil.StartOfQuarter(anchor), timeutil.EndOfQuarter(anchor))
}

// Dashboard assembles the owner landing page in one call.
// propertyID 0 means the whole portfolio.
func (s *ReportService) Dashboard(ctx context.Context, ownerID, propertyID int) (*models.DashboardSummary, error) {
	now := s.Clock.Now()
	today := timeutil.DateOnly(now)

	month, err := s.MonthSummary(ctx, ownerID, propertyID, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	quarter, err := s.QuarterSummary(ctx, ownerID, propertyID, now)
	if err != nil {
		return nil, err
	}

	overdue, err := s.ScheduleRepo.ListOverdueByOwner(ctx, ownerID, propertyID, today, dashboardOverdueMax)
	if err != nil {
		return nil, err
	}
	overdueAmount := decimal.Zero
	for _, item := range overdue {
		item.Outstanding = item.Schedule.Remaining()
		overdueAmount = overdueAmount.Add(item.Outstanding)
	}

	upcoming, err := s.ChequeRepo.ListUpcoming(ctx, ownerID, propertyID, today, today.Add(upcomingChequeWindow))
	if err != nil {
		return nil, err
	}
	bounced, err := s.ChequeRepo.CountBounced(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}
	occupancy, err := s.PropertyRepo.Occupancy(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}
	expiring, err := s.LeaseRepo.ListExpiring(ctx, ownerID, today, today.Add(expiringLeaseWindow))
	if err != nil {
		return nil, err
	}

	return &models.DashboardSummary{
		OwnerID:         ownerID,
		Month:           month,
		Quarter:         quarter,
		OverdueAmount:   overdueAmount,
		OverdueItems:    overdue,
		UpcomingCheques: upcoming,
		BouncedCount:    bounced,
		Occupancy:       occupancy,
		ExpiringLeases:  expiring,
		GeneratedAt:     now,
	}, nil
}

// PortfolioRollup is the manager view: one row per owner for the given
// window, computed in parallel across owners.
func (s *ReportService) PortfolioRollup(ctx context.Context, from, to time.Time) ([]*models.OwnerRollup, error) {
	owners, err := s.UserRepo.ListOwners(ctx)
	if err != nil {
		return nil, err
	}

	type result struct {
		index  int
		rollup *models.OwnerRollup
		err    error
	}

	jobs := make(chan int, len(owners))
	results := make(chan result, len(owners))

	var wg sync.WaitGroup
	numWorkers := 10
	if len(owners) < numWorkers {
		numWorkers = len(owners)
	}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				rollup, err := s.ownerRollup(ctx, owners[idx], from, to)
				results <- result{index: idx, rollup: rollup, err: err}
			}
		}()
	}
	for i := range owners {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	rollups := make([]*models.OwnerRollup, len(owners))
	for r := range results {
		if r.err != nil {
			return nil, r.err
		}
		rollups[r.index] = r.rollup
	}
	return rollups, nil
}

func (s *ReportService) ownerRollup(ctx context.Context, owner *models.User, from, to time.Time) (*models.OwnerRollup, error) {
	summary, err := s.CollectionWindow(ctx, owner.ID, 0, from, to)
	if err != nil {
		return nil, err
	}
	today := timeutil.DateOnly(s.Clock.Now())
	overdue, err := s.ScheduleRepo.ListOverdueByOwner(ctx, owner.ID, 0, today, 0)
	if err != nil {
		return nil, err
	}
	overdueAmount := decimal.Zero
	for _, item := range overdue {
		overdueAmount = overdueAmount.Add(item.Schedule.Remaining())
	}
	bounced, err := s.ChequeRepo.CountBounced(ctx, owner.ID, 0)
	if err != nil {
		return nil, err
	}
	expiring, err := s.LeaseRepo.ListExpiring(ctx, owner.ID, today, today.Add(expiringLeaseWindow))
	if err != nil {
		return nil, err
	}

	return &models.OwnerRollup{
		OwnerID:        owner.ID,
		OwnerName:      owner.Name,
		Expected:       summary.Expected,
		Received:       summary.Received,
		OverdueCount:   len(overdue),
		OverdueAmount:  overdueAmount,
		BouncedCount:   bounced,
		ExpiringCount:  len(expiring),
		NeedsAttention: needsAttention(len(overdue), bounced, len(expiring)),
	}, nil
}

// needsAttention flags an owner when any of the three signals is non-zero
func needsAttention(overdue, bounced, expiring int) bool {
	return overdue > 0 || bounced > 0 || expiring > 0
}

// StatementCSV renders an owner statement for the window as CSV
func (s *ReportService) StatementCSV(ctx context.Context, ownerID, propertyID int, from, to time.Time) ([]byte, error) {
	rows, err := s.ScheduleRepo.StatementRows(ctx, ownerID, propertyID, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"Owner Statement", fmt.Sprintf("%s to %s", from.Format("02-Jan-2006"), to.Format("02-Jan-2006"))})
	w.Write([]string{""})
	w.Write([]string{"#", "Property", "Unit", "Tenant", "Due Date", "Expected", "Paid", "Status"})

	totalExpected := decimal.Zero
	totalPaid := decimal.Zero
	for i, row := range rows {
		w.Write([]string{
			fmt.Sprintf("%d", i+1),
			row.PropertyName,
			row.UnitLabel,
			row.TenantName,
			row.DueDate.Format("02-Jan-2006"),
			row.Expected.StringFixed(2),
			row.Paid.StringFixed(2),
			string(row.Status),
		})
		totalExpected = totalExpected.Add(row.Expected)
		totalPaid = totalPaid.Add(row.Paid)
	}
	w.Write([]string{""})
	w.Write([]string{"", "", "", "Total", "", totalExpected.StringFixed(2), totalPaid.StringFixed(2), ""})

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StatementPDF renders an owner statement for the window as PDF
func (s *ReportService) StatementPDF(ctx context.Context, ownerID, propertyID int, from, to time.Time) ([]byte, error) {
	rows, err := s.ScheduleRepo.StatementRows(ctx, ownerID, propertyID, from, to)
	if err != nil {
		return nil, err
	}
	owner, err := s.UserRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Rent Statement", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Owner: %s", owner.Name), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 6, fmt.Sprintf("Period: %s to %s", from.Format("02-Jan-2006"), to.Format("02-Jan-2006")), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", s.Clock.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(10, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(42, 7, "Property", "1", 0, "C", true, 0, "")
	pdf.CellFormat(18, 7, "Unit", "1", 0, "C", true, 0, "")
	pdf.CellFormat(42, 7, "Tenant", "1", 0, "C", true, 0, "")
	pdf.CellFormat(24, 7, "Due Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(18, 7, "Expected", "1", 0, "C", true, 0, "")
	pdf.CellFormat(18, 7, "Paid", "1", 0, "C", true, 0, "")
	pdf.CellFormat(18, 7, "Status", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	totalExpected := decimal.Zero
	totalPaid := decimal.Zero
	for i, row := range rows {
		if i%2 == 0 {
			pdf.SetFillColor(255, 255, 255)
		} else {
			pdf.SetFillColor(245, 245, 245)
		}

		property := row.PropertyName
		if len(property) > 24 {
			property = property[:21] + "..."
		}
		tenant := row.TenantName
		if len(tenant) > 24 {
			tenant = tenant[:21] + "..."
		}

		pdf.CellFormat(10, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", true, 0, "")
		pdf.CellFormat(42, 6, property, "1", 0, "L", true, 0, "")
		pdf.CellFormat(18, 6, row.UnitLabel, "1", 0, "C", true, 0, "")
		pdf.CellFormat(42, 6, tenant, "1", 0, "L", true, 0, "")
		pdf.CellFormat(24, 6, row.DueDate.Format("02-Jan-2006"), "1", 0, "C", true, 0, "")
		pdf.CellFormat(18, 6, row.Expected.StringFixed(2), "1", 0, "R", true, 0, "")
		pdf.CellFormat(18, 6, row.Paid.StringFixed(2), "1", 0, "R", true, 0, "")
		pdf.CellFormat(18, 6, string(row.Status), "1", 1, "C", true, 0, "")

		totalExpected = totalExpected.Add(row.Expected)
		totalPaid = totalPaid.Add(row.Paid)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(136, 8, "Total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(18, 8, totalExpected.StringFixed(2), "1", 0, "R", true, 0, "")
	pdf.CellFormat(18, 8, totalPaid.StringFixed(2), "1", 0, "R", true, 0, "")
	pdf.CellFormat(18, 8, "", "1", 1, "C", true, 0, "")

	outstanding := totalExpected.Sub(totalPaid)
	if outstanding.Sign() > 0 {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 12)
	line := fmt.Sprintf("Outstanding: AED %s", outstanding.StringFixed(2))
	if outstanding.Sign() <= 0 {
		line = "FULLY COLLECTED"
	}
	pdf.CellFormat(190, 10, line, "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReceiptPDF renders a single payment receipt with its allocation lines
func (s *ReportService) ReceiptPDF(ctx context.Context, paymentID int) ([]byte, error) {
	payment, err := s.PaymentRepo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	matches, err := s.PaymentRepo.MatchesForPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	lease, err := s.LeaseRepo.Get(ctx, payment.LeaseID)
	if err != nil {
		return nil, err
	}
	schedules, err := s.ScheduleRepo.ListByLease(ctx, payment.LeaseID)
	if err != nil {
		return nil, err
	}
	dueDates := make(map[int]time.Time, len(schedules))
	for _, sched := range schedules {
		dueDates[sched.ID] = sched.DueDate
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Receipt #%d", payment.ID), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Payment Details", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Tenant: %s", lease.TenantName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Property: %s", lease.PropertyName), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Paid on: %s", payment.PaidOn.Format("02-Jan-2006")), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Method: %s", payment.Method), "RB", 1, "L", false, 0, "")
	if payment.Reference != "" {
		pdf.CellFormat(190, 7, fmt.Sprintf("Reference: %s", payment.Reference), "LRB", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Applied To", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(95, 7, "Obligation Due", "1", 0, "C", true, 0, "")
	pdf.CellFormat(95, 7, "Amount", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, m := range matches {
		due := ""
		if d, ok := dueDates[m.ScheduleID]; ok {
			due = d.Format("02-Jan-2006")
		}
		pdf.CellFormat(95, 6, due, "1", 0, "C", false, 0, "")
		pdf.CellFormat(95, 6, m.Amount.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	if payment.UnallocatedAmount.Sign() > 0 {
		pdf.CellFormat(95, 6, "Unallocated", "1", 0, "C", false, 0, "")
		pdf.CellFormat(95, 6, payment.UnallocatedAmount.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(200, 255, 200)
	pdf.CellFormat(190, 10, fmt.Sprintf("Total: AED %s", payment.Amount.StringFixed(2)), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BulkStatementZip renders one CSV statement per owner and zips them,
// generating in parallel
func (s *ReportService) BulkStatementZip(ctx context.Context, from, to time.Time) ([]byte, error) {
	owners, err := s.UserRepo.ListOwners(ctx)
	if err != nil {
		return nil, err
	}

	type csvResult struct {
		ownerID int
		name    string
		data    []byte
		err     error
	}

	jobs := make(chan *models.User, len(owners))
	results := make(chan csvResult, len(owners))

	var wg sync.WaitGroup
	numWorkers := 5
	if len(owners) < numWorkers {
		numWorkers = len(owners)
	}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for owner := range jobs {
				data, err := s.StatementCSV(ctx, owner.ID, 0, from, to)
				results <- csvResult{ownerID: owner.ID, name: owner.Name, data: data, err: err}
			}
		}()
	}
	for _, owner := range owners {
		jobs <- owner
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for r := range results {
		if r.err != nil {
			return nil, r.err
		}
		fw, err := zw.Create(fmt.Sprintf("statement_%d_%s.csv", r.ownerID, r.name))
		if err != nil {
			return nil, err
		}
		fw.Write(r.data)
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
