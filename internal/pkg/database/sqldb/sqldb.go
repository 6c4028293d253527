package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ohowland/cgc_hvdc/internal/pkg/record"
	"gopkg.in/validator.v2"

	_ "github.com/lib/pq"
)

// Source loads DC records from a MySQL or PostgreSQL database.
type Source struct {
	config config
}

type config struct {
	Driver   string `json:"Driver" validate:"regexp=^(mysql|postgres)$"`
	Server   string `json:"Server" validate:"nonzero"`
	Port     int    `json:"Port" validate:"min=1"`
	Username string `json:"Username"`
	Password string `json:"Password"`
	Database string `json:"Database" validate:"nonzero"`
	Timeout  int    `json:"Timeout" validate:"min=1"`
}

// table maps one database table to the records of a Model.
type table struct {
	name  string
	idKey string
	set   func(*record.Model, []record.Record)
}

var tables = []table{
	{"dc_terminal", record.DCTerminal, func(m *record.Model, rs []record.Record) { m.Terminals = rs }},
	{"acdc_converter", record.ACDCConverter, func(m *record.Model, rs []record.Record) { m.Converters = rs }},
	{"dc_line_segment", record.DCLineSegment, func(m *record.Model, rs []record.Record) { m.Lines = rs }},
	{"dc_switch", record.DCSwitch, func(m *record.Model, rs []record.Record) { m.Switches = rs }},
	{"dc_ground", record.DCGround, func(m *record.Model, rs []record.Record) { m.Grounds = rs }},
}

// columnKeys maps column names to record keys. The id column is mapped to the
// id key of the table.
var columnKeys = map[string]string{
	"type":           record.Type,
	"name":           record.Name,
	"node":           record.DCNode,
	"terminal":       record.DCTerminal,
	"terminal1":      record.DCTerminal1,
	"terminal2":      record.DCTerminal2,
	"r":              record.R,
	"rated_udc":      record.RatedUdc,
	"target_ppcc":    record.TargetPpcc,
	"pole_loss_p":    record.PoleLossP,
	"operating_mode": record.OperatingMode,
}

// New reads the database configuration file.
func New(configPath string) (Source, error) {
	jsonConfig, err := os.ReadFile(configPath)
	if err != nil {
		return Source{}, err
	}
	cfg := config{Driver: "mysql", Timeout: 5}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return Source{}, err
	}
	if err := validator.Validate(cfg); err != nil {
		return Source{}, err
	}

	return Source{config: cfg}, nil
}

// DSN returns the data source name for the configured driver.
func (s Source) DSN() string {
	switch s.config.Driver {
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
			s.config.Username, s.config.Password,
			net.JoinHostPort(s.config.Server, strconv.Itoa(s.config.Port)), s.config.Database)
	default:
		cfg := mysql.NewConfig()
		cfg.User = s.config.Username
		cfg.Passwd = s.config.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(s.config.Server, strconv.Itoa(s.config.Port))
		cfg.DBName = s.config.Database
		return cfg.FormatDSN()
	}
}

func (s Source) DB() (*sql.DB, error) {
	return sql.Open(s.config.Driver, s.DSN())
}

// Load reads every DC table of the database.
func (s Source) Load(ctx context.Context) (record.Model, error) {
	db, err := s.DB()
	if err != nil {
		return record.Model{}, err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.config.Timeout)*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return record.Model{}, err
	}
	m, err := LoadDB(ctx, db)
	if err != nil {
		return record.Model{}, err
	}
	log.Printf("[SQL] loaded %d converters, %d lines from %s\n", len(m.Converters), len(m.Lines), s.config.Database)
	return m, nil
}

// LoadDB reads every DC table of an open database.
func LoadDB(ctx context.Context, db *sql.DB) (record.Model, error) {
	m := record.Model{}
	for _, t := range tables {
		rows, err := db.QueryContext(ctx, "SELECT * FROM "+t.name)
		if err != nil {
			return record.Model{}, fmt.Errorf("%s: %w", t.name, err)
		}
		rs, err := scanRecords(rows, t.idKey)
		rows.Close()
		if err != nil {
			return record.Model{}, fmt.Errorf("%s: %w", t.name, err)
		}
		t.set(&m, rs)
	}
	return m, nil
}

// Rows is the part of *sql.Rows used to read records.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanRecords(rows Rows, idKey string) ([]record.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(columns))
	for i, c := range columns {
		switch key, ok := columnKeys[c]; {
		case c == "id":
			keys[i] = idKey
		case ok:
			keys[i] = key
		default:
			keys[i] = c
		}
	}

	rs := make([]record.Record, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		r := make(record.Record, len(columns))
		for i, v := range values {
			switch v := v.(type) {
			case nil:
			case []byte:
				r[keys[i]] = string(v)
			default:
				r[keys[i]] = v
			}
		}
		rs = append(rs, r)
	}
	return rs, rows.Err()
}
