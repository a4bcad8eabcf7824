package services

import (
	"backoffice/schedule"
	"bytes"
	"context"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exportFixture(t *testing.T) (*ExportService, *ImportService) {
	t.Helper()
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	deposits := NewDepositService(db)

	mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "X1", Name: "Export", Amount: 5000, EMIAmount: 500, StartDate: "2024-01-01"})
	mustDeposit(t, deposits, alice, "X1", 1000, "2024-01-10")
	_, err := deposits.Create(context.Background(), alice, DepositRequest{CustomerCode: "X1", Amount: 500, Penalty: 25, DepositDate: "2024-02-10", Remark: "late"})
	require.NoError(t, err)

	return NewExportService(customers, deposits), NewImportService(newTestDB(t))
}

func TestExportCustomersRoundTripsThroughImport(t *testing.T) {
	exports, imports := exportFixture(t)
	ctx := context.Background()

	data, err := exports.CustomersXLSX(ctx, alice)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Customers")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "customer_code", rows[0][0])
	assert.Equal(t, "X1", rows[1][0])
	assert.Equal(t, "2024-01-04", rows[1][len(rows[1])-1])

	// Выгрузка читается импортом другой базы
	result, err := imports.ImportCustomers(ctx, admin, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
}

func TestExportDepositsXML(t *testing.T) {
	exports, _ := exportFixture(t)

	data, err := exports.Deposits(context.Background(), alice, DepositFilter{From: "2024-02-01"}, "XML")
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))
	vouchers := doc.FindElements("//VOUCHER")
	require.Len(t, vouchers, 1)

	v := vouchers[0]
	assert.Equal(t, "Receipt", v.SelectAttrValue("VCHTYPE", ""))
	assert.Equal(t, "20240210", v.SelectElement("DATE").Text())
	assert.Equal(t, "late", v.SelectElement("NARRATION").Text())
	entries := v.SelectElements("ALLLEDGERENTRIES.LIST")
	require.Len(t, entries, 2)
	assert.Equal(t, "525.00", entries[0].SelectElement("AMOUNT").Text())
	assert.Equal(t, "-525.00", entries[1].SelectElement("AMOUNT").Text())
}

func TestExportDepositsFormat(t *testing.T) {
	exports, _ := exportFixture(t)

	data, err := exports.Deposits(context.Background(), alice, DepositFilter{}, "")
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Deposits")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = exports.Deposits(context.Background(), alice, DepositFilter{}, "csv")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "format")
}
