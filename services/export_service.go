package services

import (
	"backoffice/models"
	"backoffice/schedule"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Форматы выгрузки
const (
	FormatXLSX = "xlsx"
	FormatXML  = "xml"
)

// ExportService выгружает клиентов и взносы в Excel и XML
type ExportService struct {
	customers *CustomerService
	deposits  *DepositService
}

// NewExportService создает новый экземпляр ExportService
func NewExportService(customers *CustomerService, deposits *DepositService) *ExportService {
	return &ExportService{customers: customers, deposits: deposits}
}

var customerColumns = []interface{}{
	"customer_code", "name", "mobile", "address", "amount", "duration", "emi_amount",
	"start_date", "end_date", "advance_days", "file_charge", "status", "remark",
	"total_received", "pending_amount", "installments_paid", "next_due_date",
}

// CustomersXLSX выгружает клиентов пользователя в .xlsx; колонки совместимы с импортом
func (s *ExportService) CustomersXLSX(ctx context.Context, actor models.Actor) ([]byte, error) {
	customers, err := s.customers.List(ctx, actor, CustomerFilter{})
	if err != nil {
		return nil, err
	}

	rows := make([][]interface{}, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []interface{}{
			c.CustomerCode, c.Name, c.Mobile, c.Address, c.Amount, c.Duration, c.EMIAmount,
			c.StartDate, c.EndDate, c.AdvanceDays, c.FileCharge, c.Status, c.Remark,
			c.TotalReceived, c.PendingAmount, c.InstallmentsPaid, c.NextDueDate.String(),
		})
	}
	return writeWorkbook("Customers", customerColumns, rows)
}

var depositColumns = []interface{}{"id", "customer_code", "amount", "penalty", "deposit_date", "remark"}

// Deposits выгружает взносы по фильтру в формате xlsx или xml
func (s *ExportService) Deposits(ctx context.Context, actor models.Actor, f DepositFilter, format string) ([]byte, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatXML {
		return nil, fieldError("format", "format must be one of: xlsx xml")
	}

	deposits, err := s.deposits.List(ctx, actor, f)
	if err != nil {
		return nil, err
	}

	if format == FormatXML {
		return depositsXML(deposits)
	}

	rows := make([][]interface{}, 0, len(deposits))
	for _, d := range deposits {
		rows = append(rows, []interface{}{d.ID, d.CustomerCode, d.Amount, d.Penalty, d.DepositDate, d.Remark})
	}
	return writeWorkbook("Deposits", depositColumns, rows)
}

// writeWorkbook создает книгу с одним листом: заголовок и строки
func writeWorkbook(sheetName string, header []interface{}, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &rows[i]); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// depositsXML строит конверт импорта ваучеров Tally: по одному Receipt на взнос
func depositsXML(deposits []models.Deposit) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	envelope := doc.CreateElement("ENVELOPE")
	header := envelope.CreateElement("HEADER")
	header.CreateElement("TALLYREQUEST").SetText("Import Data")

	importData := envelope.CreateElement("BODY").CreateElement("IMPORTDATA")
	importData.CreateElement("REQUESTDESC").CreateElement("REPORTNAME").SetText("Vouchers")
	requestData := importData.CreateElement("REQUESTDATA")

	for _, d := range deposits {
		msg := requestData.CreateElement("TALLYMESSAGE")
		msg.CreateAttr("xmlns:UDF", "TallyUDF")

		voucher := msg.CreateElement("VOUCHER")
		voucher.CreateAttr("VCHTYPE", "Receipt")
		voucher.CreateAttr("ACTION", "Create")

		date := d.DepositDate
		if t := schedule.ParseDate(d.DepositDate); t != nil {
			date = t.Format("20060102")
		}
		voucher.CreateElement("DATE").SetText(date)
		voucher.CreateElement("VOUCHERTYPENAME").SetText("Receipt")
		voucher.CreateElement("VOUCHERNUMBER").SetText(fmt.Sprintf("%d", d.ID))
		voucher.CreateElement("PARTYLEDGERNAME").SetText(d.CustomerCode)
		voucher.CreateElement("NARRATION").SetText(d.Remark)

		total := decimal.NewFromFloat(d.Amount).Add(decimal.NewFromFloat(d.Penalty))

		party := voucher.CreateElement("ALLLEDGERENTRIES.LIST")
		party.CreateElement("LEDGERNAME").SetText(d.CustomerCode)
		party.CreateElement("ISDEEMEDPOSITIVE").SetText("No")
		party.CreateElement("AMOUNT").SetText(total.StringFixed(2))

		cash := voucher.CreateElement("ALLLEDGERENTRIES.LIST")
		cash.CreateElement("LEDGERNAME").SetText("Cash")
		cash.CreateElement("ISDEEMEDPOSITIVE").SetText("Yes")
		cash.CreateElement("AMOUNT").SetText(total.Neg().StringFixed(2))
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}
