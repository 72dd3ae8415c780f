package main

import (
	"flag"
	"log"

	"github.com/xuri/excelize/v2"

	"github.com/onurcolak/contact-dispatch-service/environments"
	"github.com/onurcolak/contact-dispatch-service/pkg/database"
)

var sampleHeaders = []string{"Name", "Phone", "Mehendi", "Sangeet", "Wedding", "Reception"}

var sampleContacts = [][]string{
	{"Aarav Sharma", "+919800000001", "Yes", "Yes", "Yes", "Yes"},
	{"Diya Patel", "+919800000002", "No", "Yes", "Yes", "No"},
	{"Kabir Mehta", "+919800000003", "Yes", "No", "Yes", "Yes"},
	{"Isha Reddy", "+919800000004", "yes", "YES", "no", "yes"},
	{"Rohan Gupta", "9800000005", "Yes", "Yes", "Yes", "Yes"},
	{"Meera Iyer", "+919800000006", "No", "No", "Yes", ""},
	{"", "+919800000007", "Yes", "Yes", "Yes", "Yes"},
	{"Vikram Singh", "+919800000008", "Yes"},
}

func main() {
	out := flag.String("out", "sample_contacts.xlsx", "path of the sample contacts workbook")
	flag.Parse()

	cfg := environments.Load()

	if cfg.Database.Enabled {
		db, err := database.NewMySQLDB(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("Failed to close database: %v", err)
			}
		}()

		if err := database.RunMigrations(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	if err := writeSampleWorkbook(*out); err != nil {
		log.Fatalf("Failed to write sample contacts: %v", err)
	}

	log.Printf("Seed completed successfully, sample contacts written to %s", *out)
}

// writeSampleWorkbook writes a guest list with a few rows the dispatcher
// skips: a local number, a missing name and a short row.
func writeSampleWorkbook(path string) error {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Guests"
	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		return err
	}

	if err := xl.SetSheetRow(sheet, "A1", &sampleHeaders); err != nil {
		return err
	}

	for i, row := range sampleContacts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := xl.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return xl.SaveAs(path)
}
