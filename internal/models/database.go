package models

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	gorm_zerolog "github.com/wei840222/gorm-zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB is the database used by the backend.
var DB *gorm.DB

// Connect opens the database and configures the connection pool.
//
// If DB_HOST is set, postgresql is used. Otherwise the dsn is treated
// as the path to an SQLite database file.
func Connect(dsn string) error {
	config := &gorm.Config{
		// Set generated timestamps in UTC
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
		Logger: gorm_zerolog.New(),
	}

	var db *gorm.DB
	var err error

	if host, ok := os.LookupEnv("DB_HOST"); ok {
		log.Debug().Str("host", host).Msg("DB_HOST is set, using postgresql")
		pgDSN := fmt.Sprintf("host=%s user=%s password=%s dbname=%s", host, os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"))
		db, err = gorm.Open(postgres.Open(pgDSN), config)
	} else {
		db, err = gorm.Open(sqlite.Open(fmt.Sprintf("%s?_pragma=foreign_keys(1)", dsn)), config)
	}

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// A single connection serializes all transactions on SQLite. This
	// prevents SQLITE_BUSY errors and makes check-then-act sequences
	// (balance checks, funding reservations, the ledger tip read) safe
	// without explicit row locks.
	if _, ok := os.LookupEnv("DB_HOST"); !ok {
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetMaxOpenConns(1)
	}

	err = migrate(db)
	if err != nil {
		return err
	}

	// Query callbacks
	err = db.Callback().Query().After("*").Register("volo:after_query", queryCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Query().After("*").Register("volo:after_query_general", generalCallback)
	if err != nil {
		return err
	}

	// Create callbacks
	err = db.Callback().Create().After("*").Register("volo:after_create", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Create().After("*").Register("volo:after_create_general", generalCallback)
	if err != nil {
		return err
	}

	// Update callbacks
	err = db.Callback().Update().After("*").Register("volo:after_update", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Update().After("*").Register("volo:after_update_general", generalCallback)
	if err != nil {
		return err
	}

	// Delete callbacks
	err = db.Callback().Delete().After("*").Register("volo:after_delete_general", generalCallback)
	if err != nil {
		return err
	}

	// Set the exported variable
	DB = db

	return nil
}

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		// Use the table name as information about the type of resource
		// and replace "_" with "[space]"
		name := strings.ReplaceAll(db.Statement.Table, "_", " ")

		// Replace pluralized "ies" with "y"
		match := regexp.MustCompile("ies$")
		name = match.ReplaceAllString(name, "y")

		// Remove plural "s"
		name = strings.TrimRight(name, "s")

		db.Error = fmt.Errorf("%w %s matching your query", ErrResourceNotFound, name)
	}
}

// SQLSTATE codes returned by postgres that the callbacks translate.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// uniqueViolations maps violated unique constraints to domain errors.
// SQLite names the columns in the error message, postgres reports the
// name of the violated index.
var uniqueViolations = []struct {
	columns string
	index   string
	err     error
}{
	// Only one ledger entry can reference a given chain tip. A violation
	// means a concurrent append won the race; the enclosing operation
	// must be retried as a whole.
	{"ledger_entries.prev_hash", "idx_ledger_entries_prev_hash", ErrLedgerConflict},

	// One credit per verified attendance
	{"volo_credits.source_attendance_id", "idx_volo_credits_source_attendance_id", ErrDuplicateSource},

	// One funding approval per (project, company) pair
	{"project_company_fundings.project_id, project_company_fundings.company_id", "funding_project_company", ErrFundingNotUnique},

	// One attendance record per (volunteer, activity) pair
	{"attendances.volunteer_id, attendances.activity_id", "attendance_volunteer_activity", ErrAttendanceNotUnique},

	{"volunteers.email", "idx_volunteers_email", ErrVolunteerEmailNotUnique},
	{"regions.name", "regions_name", ErrRegionNameNotUnique},
}

// translateConstraintError maps a driver-level unique constraint
// violation to its domain error. Errors without a mapping pass through
// unchanged.
func translateConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return err
		}

		for _, violation := range uniqueViolations {
			if pgErr.ConstraintName == violation.index {
				return violation.err
			}
		}

		return err
	}

	msg := err.Error()
	for _, violation := range uniqueViolations {
		if strings.Contains(msg, "UNIQUE constraint failed: "+violation.columns) {
			return violation.err
		}
	}

	return err
}

// createUpdateCallback inspects errors returned by the database for
// create and update calls and replaces them with domain errors
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	db.Error = translateConstraintError(db.Error)
}

// generalCallback handles unspecified errors.
//
// For these errors, we cannot provide the user with a helpful message.
// Instead, the error is logged and we return a general message so that
// server admins can debug.
func generalCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	msg := db.Error.Error()

	// SQLITE_BUSY surfaces when a write lock could not be acquired in
	// time. The caller may retry.
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
		db.Error = ErrBusy
		return
	}

	// Serialization failures and deadlocks on postgres resolve the same
	// way, with a retry in a fresh transaction.
	var pgErr *pgconn.PgError
	if errors.As(db.Error, &pgErr) && (pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected) {
		db.Error = ErrBusy
		return
	}

	// "sql: database is closed" is hard-coded in the sql module
	if msg == "sql: database is closed" {
		log.Error().Msgf("%T: %v", db.Error, msg)
		db.Error = ErrGeneral
		return
	}
}

// migrate migrates all models to the schema defined in the code.
func migrate(db *gorm.DB) (err error) {
	err = db.AutoMigrate(
		Region{},
		Organization{},
		Company{},
		Volunteer{},
		Project{},
		Activity{},
		Attendance{},
		VoloCredit{},
		Allocation{},
		ProjectCompanyFunding{},
		LedgerEntry{},
		Profile{},
	)
	if err != nil {
		return fmt.Errorf("error during DB migration: %w", err)
	}

	return nil
}
