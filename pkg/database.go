package ssacal

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type RunConditionEntry struct {
	RunNumber int    `db:"RunNumber"`
	NameID    string `db:"NameID"`
}

// DBCatalog reads the runs of each condition from the RunConditions table.
type DBCatalog struct {
	db *sqlx.DB
}

func NewDBCatalog(db *sqlx.DB) *DBCatalog {
	return &DBCatalog{db: db}
}

func (c *DBCatalog) Lookup(material string, energy int) (RunSet, error) {
	query := "SELECT RunNumber, NameID FROM RunConditions WHERE Material = ? AND Energy = ? ORDER BY RunNumber"
	if verbosity > 0 {
		message := fmt.Sprintf("Reading runs for %s at %d MeV from database", material, energy)
		logger.Info(message, "database")
	}
	if verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}
	rows, err := c.db.Queryx(query, material, energy)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return RunSet{}, errMessage
	}
	defer rows.Close()

	runs := RunSet{}
	for rows.Next() {
		result := RunConditionEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return RunSet{}, errMessage
		}
		runs.Runs = append(runs.Runs, result.RunNumber)
		runs.NameID = result.NameID
	}
	if err := rows.Err(); err != nil {
		return RunSet{}, fmt.Errorf("error reading DB rows: %w", err)
	}
	if len(runs.Runs) == 0 {
		return RunSet{}, &ErrUnknownCondition{Material: material, Energy: energy}
	}
	return runs, nil
}
