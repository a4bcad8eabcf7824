package services

import (
	"backoffice/database"
	"backoffice/models"
	"backoffice/schedule"
	"backoffice/utils"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ImportRowError - ошибка строки листа (номер строки как в Excel)
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult - итог пакетного импорта
type ImportResult struct {
	BatchID  string           `json:"batch_id"`
	Inserted int              `json:"inserted"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors"`
}

func (r *ImportResult) fail(row int, err error) {
	r.Errors = append(r.Errors, ImportRowError{Row: row, Message: err.Error()})
}

// headerAliases - альтернативные названия колонок
var headerAliases = map[string]string{
	"code":          "customer_code",
	"customer_name": "name",
	"emi":           "emi_amount",
	"loan_amount":   "amount",
	"date":          "deposit_date",
	"phone":         "mobile",
}

// sheet - первый лист книги: заголовок и строки данных
type sheet struct {
	columns map[string]int
	rows    [][]string
}

// readSheet читает первый лист .xlsx. Числа и даты берутся без форматирования.
func readSheet(r io.Reader, required ...string) (*sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fieldError("file", "file must be an .xlsx workbook")
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, fieldError("file", "sheet is empty")
	}

	s := &sheet{columns: make(map[string]int), rows: rows[1:]}
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
		if alias, ok := headerAliases[key]; ok {
			key = alias
		}
		if _, dup := s.columns[key]; !dup && key != "" {
			s.columns[key] = i
		}
	}
	for _, col := range required {
		if _, ok := s.columns[col]; !ok {
			return nil, fieldError("file", "missing column "+col)
		}
	}
	return s, nil
}

// cell возвращает значение колонки строки или пустую строку
func (s *sheet) cell(row []string, column string) string {
	i, ok := s.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (s *sheet) float(row []string, column string) float64 {
	return schedule.Amount(s.cell(row, column)).InexactFloat64()
}

func (s *sheet) int(row []string, column string) int {
	return int(schedule.Amount(s.cell(row, column)).IntPart())
}

// date принимает дату строкой или серийным номером Excel
func (s *sheet) date(row []string, column string) string {
	raw := s.cell(row, column)
	if raw == "" {
		return ""
	}
	if t := schedule.ParseDate(raw); t != nil {
		return t.Format(schedule.DateLayout)
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format(schedule.DateLayout)
		}
	}
	return raw
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ImportService загружает клиентов и взносы из Excel
type ImportService struct {
	db *database.Database
}

// NewImportService создает новый экземпляр ImportService
func NewImportService(db *database.Database) *ImportService {
	return &ImportService{db: db}
}

// ImportCustomers загружает клиентов одной транзакцией.
// Дубликаты кода (в базе или повторно в листе) пропускаются, прочие ошибки строк
// откатываются к точке сохранения строки и попадают в Errors. Ошибка хранилища отменяет весь импорт.
func (s *ImportService) ImportCustomers(ctx context.Context, actor models.Actor, r io.Reader) (result *ImportResult, err error) {
	start := time.Now()
	defer func() { utils.LogOperation("import.customers", start, err) }()

	sh, err := readSheet(r, "customer_code", "name")
	if err != nil {
		return nil, err
	}

	result = &ImportResult{BatchID: uuid.NewString(), Errors: []ImportRowError{}}
	err = s.db.Transaction(ctx, func(tx *database.Database) error {
		var codes []string
		if err := tx.All(ctx, &codes, "SELECT customer_code FROM customers"); err != nil {
			return err
		}
		known := make(map[string]bool, len(codes))
		for _, c := range codes {
			known[c] = true
		}

		for i, row := range sh.rows {
			rowNum := i + 2
			if blank(row) {
				continue
			}

			req := CustomerRequest{
				CustomerCode: sh.cell(row, "customer_code"),
				Name:         sh.cell(row, "name"),
				Mobile:       sh.cell(row, "mobile"),
				Address:      sh.cell(row, "address"),
				Amount:       sh.float(row, "amount"),
				Duration:     sh.int(row, "duration"),
				EMIAmount:    sh.float(row, "emi_amount"),
				StartDate:    sh.date(row, "start_date"),
				EndDate:      sh.date(row, "end_date"),
				AdvanceDays:  sh.int(row, "advance_days"),
				FileCharge:   sh.float(row, "file_charge"),
				Status:       strings.ToLower(sh.cell(row, "status")),
				Remark:       sh.cell(row, "remark"),
			}
			req.normalize()

			if known[req.CustomerCode] {
				result.Skipped++
				utils.LogInfo("Import %s: row %d skipped, duplicate customer code %s", result.BatchID, rowNum, req.CustomerCode)
				continue
			}
			if err := validateStruct(req); err != nil {
				result.fail(rowNum, err)
				continue
			}

			customer := customerFromRequest(req)
			customer.CreatedBy = actor.UserID
			if err := insertRow(tx, rowNum, customer); err != nil {
				if _, rowErr := err.(rowError); !rowErr {
					return err
				}
				result.fail(rowNum, err)
				continue
			}
			known[req.CustomerCode] = true
			result.Inserted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordImport(result.Inserted, result.Skipped, len(result.Errors))
	return result, nil
}

// ImportDeposits загружает взносы одной транзакцией.
// Строка с тем же клиентом, датой и суммой, что уже есть в базе или выше в листе, считается дубликатом.
func (s *ImportService) ImportDeposits(ctx context.Context, actor models.Actor, r io.Reader) (result *ImportResult, err error) {
	start := time.Now()
	defer func() { utils.LogOperation("import.deposits", start, err) }()

	sh, err := readSheet(r, "customer_code", "amount", "deposit_date")
	if err != nil {
		return nil, err
	}

	result = &ImportResult{BatchID: uuid.NewString(), Errors: []ImportRowError{}}
	err = s.db.Transaction(ctx, func(tx *database.Database) error {
		// взносы принимаются только по своим клиентам
		owned, args := database.Where().OwnedBy(actor, "created_by").Clause()
		var codes []string
		if err := tx.All(ctx, &codes, "SELECT customer_code FROM customers"+owned, args...); err != nil {
			return err
		}
		customers := make(map[string]bool, len(codes))
		for _, c := range codes {
			customers[c] = true
		}

		var existing []struct {
			CustomerCode string
			DepositDate  string
			Amount       float64
		}
		if err := tx.All(ctx, &existing, "SELECT customer_code, deposit_date, amount FROM deposits"); err != nil {
			return err
		}
		seen := make(map[string]bool, len(existing))
		for _, d := range existing {
			seen[depositKey(d.CustomerCode, d.DepositDate, d.Amount)] = true
		}

		for i, row := range sh.rows {
			rowNum := i + 2
			if blank(row) {
				continue
			}

			req := DepositRequest{
				CustomerCode: sh.cell(row, "customer_code"),
				Amount:       sh.float(row, "amount"),
				Penalty:      sh.float(row, "penalty"),
				DepositDate:  sh.date(row, "deposit_date"),
				Remark:       sh.cell(row, "remark"),
			}
			req.normalize()

			key := depositKey(req.CustomerCode, req.DepositDate, req.Amount)
			if seen[key] {
				result.Skipped++
				utils.LogInfo("Import %s: row %d skipped, duplicate deposit %s", result.BatchID, rowNum, key)
				continue
			}
			if err := validateStruct(req); err != nil {
				result.fail(rowNum, err)
				continue
			}
			if !customers[req.CustomerCode] {
				result.fail(rowNum, fmt.Errorf("unknown customer code %s", req.CustomerCode))
				continue
			}

			deposit := &models.Deposit{
				CustomerCode: req.CustomerCode,
				Amount:       req.Amount,
				Penalty:      req.Penalty,
				DepositDate:  req.DepositDate,
				Remark:       req.Remark,
				CreatedBy:    actor.UserID,
			}
			if err := insertRow(tx, rowNum, deposit); err != nil {
				if _, rowErr := err.(rowError); !rowErr {
					return err
				}
				result.fail(rowNum, err)
				continue
			}
			seen[key] = true
			result.Inserted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordImport(result.Inserted, result.Skipped, len(result.Errors))
	return result, nil
}

func depositKey(code, date string, amount float64) string {
	return fmt.Sprintf("%s|%s|%.2f", code, date, amount)
}

// rowError - отказ вставки одной строки, транзакция при этом продолжается
type rowError struct{ err error }

func (e rowError) Error() string { return e.err.Error() }

// insertRow вставляет строку под точкой сохранения.
// Отказ вставки откатывается к точке и возвращается как rowError; сбой самих точек прерывает импорт.
func insertRow(tx *database.Database, rowNum int, value interface{}) error {
	sp := fmt.Sprintf("import_row_%d", rowNum)
	if err := tx.DB.SavePoint(sp).Error; err != nil {
		return err
	}
	if err := tx.DB.Create(value).Error; err != nil {
		if rbErr := tx.DB.RollbackTo(sp).Error; rbErr != nil {
			return rbErr
		}
		return rowError{err: notFoundOr(err)}
	}
	return nil
}
