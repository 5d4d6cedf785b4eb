package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"buildledger/backend/models"
)

// ExportProjectExpenses builds an xlsx workbook listing a project's
// expenses with a totals row. Deleted expenses are excluded, matching the
// default listing.
func ExportProjectExpenses(project *models.Project, expenses []models.Expense) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Expenses"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Title", "Category", "Amount", "Paid", "Payment status", "Status", "Expense date", "Created by"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, e := range expenses {
		if e.IsDeleted {
			continue
		}
		values := []interface{}{
			e.Title,
			e.Category,
			e.Amount.String(),
			e.PaidAmount.String(),
			e.PaymentStatus,
			e.Status,
			e.ExpenseDate.Format("2006-01-02"),
			e.CreatedByName,
		}
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
		row++
	}

	totalCell, err := excelize.CoordinatesToCellName(1, row+1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, totalCell, fmt.Sprintf("Total spent: %s of %s budget",
		project.TotalSpent.String(), project.Budget.String())); err != nil {
		return nil, err
	}

	return f, nil
}
