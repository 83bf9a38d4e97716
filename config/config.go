// Package config loads the declarative description of one lab export format
// and its destination table.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"github.com/kernwater/wqloader/schema"
	"github.com/kernwater/wqloader/transform"
	"github.com/kernwater/wqloader/warehouse"
	"github.com/kernwater/wqloader/wellnumber"
)

// DefaultSampleDateStrip removes a trailing parenthetical qualifier such as
// " (PDT)". The first-space form " (.*)" would also drop the time of day,
// leaving only the date; set sample_date.strip to " .*" for that behavior.
const DefaultSampleDateStrip = `\s*\(.*\)$`

// Config is loaded once per run and never modified afterwards.
type Config struct {
	Source         Source                 `yaml:"source"`
	ColumnsToDrop  []string               `yaml:"columns_to_drop"`
	ColumnsInOrder []string               `yaml:"columns_in_order"`
	ColumnTypes    map[string]schema.Type `yaml:"column_types"`

	WellColumn       string     `yaml:"well_column"`
	ResultColumn     string     `yaml:"result_column"`
	ExcludeMarkers   []string   `yaml:"exclude_markers"`
	SampleNameColumn string     `yaml:"sample_name_column"`
	SampleDate       SampleDate `yaml:"sample_date"`
	Routing          Routing    `yaml:"routing"`

	Table          warehouse.Table `yaml:"table"`
	Warehouse      string          `yaml:"warehouse"`
	Paths          Paths           `yaml:"paths"`
	SnapshotMirror SnapshotMirror  `yaml:"snapshot_mirror"`
}

// Source describes the laboratory export.
type Source struct {
	Format          string         `yaml:"format"`
	Encoding        string         `yaml:"encoding"`
	Location        string         `yaml:"location"`
	SkipLeadingRows int            `yaml:"skip_leading_rows"`
	Columns         []SourceColumn `yaml:"columns"`
}

// SourceColumn declares a source column, its read type and its new name.
type SourceColumn struct {
	Name   string      `yaml:"name"`
	Type   schema.Type `yaml:"type"`
	Target string      `yaml:"target"`
}

// SampleDate configures qualifier removal on the sample date column.
type SampleDate struct {
	Column string `yaml:"column"`
	Strip  string `yaml:"strip"`
}

// Routing configures site partitioning.
type Routing struct {
	Site         string         `yaml:"site"`
	Path         transform.Path `yaml:"path"`
	ExcludeSites []string       `yaml:"exclude_sites"`
}

// Source formats.
const (
	FormatCSV = "csv"
	FormatXLS = "xls"
)

// Archive modes for processed files.
const (
	ArchiveMove   = "move"
	ArchiveRemove = "remove"
)

// Paths are the file-path conventions of a run.
type Paths struct {
	// Bucket, when set, makes Inbox and Loaded object prefixes in that
	// Cloud Storage bucket.
	Bucket         string `yaml:"bucket"`
	Inbox          string `yaml:"inbox"`
	Pattern        string `yaml:"pattern"`
	Loaded         string `yaml:"loaded"`
	Snapshots      string `yaml:"snapshots"`
	SnapshotPrefix string `yaml:"snapshot_prefix"`
	Archive        string `yaml:"archive"`
}

// SnapshotMirror names optional remote copies of snapshots.
type SnapshotMirror struct {
	GCSBucket string `yaml:"gcs_bucket"`
	S3Bucket  string `yaml:"s3_bucket"`
	Prefix    string `yaml:"prefix"`
}

// Load reads, defaults and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, xerrors.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, xerrors.Errorf("failed to parse config file: %w", err)
	}

	c.setDefaults()

	if err := c.Validate(); err != nil {
		return nil, xerrors.Errorf("invalid config: %w", err)
	}

	return &c, nil
}

func (c *Config) setDefaults() {
	if c.Source.Format == "" {
		c.Source.Format = FormatCSV
	}
	for i := range c.Source.Columns {
		if c.Source.Columns[i].Type == "" {
			c.Source.Columns[i].Type = schema.Text
		}
	}
	if c.WellColumn == "" {
		c.WellColumn = "state_well_number"
	}
	if c.ResultColumn == "" {
		c.ResultColumn = "result"
	}
	if c.ExcludeMarkers == nil {
		c.ExcludeMarkers = transform.DefaultExcludedMarkers
	}
	if c.SampleNameColumn == "" {
		c.SampleNameColumn = c.WellColumn
	}
	if c.SampleDate.Column != "" && c.SampleDate.Strip == "" {
		c.SampleDate.Strip = DefaultSampleDateStrip
	}
	if c.Routing.Path == "" {
		c.Routing.Path = transform.General
	}
	if c.Warehouse == "" {
		c.Warehouse = "postgres"
	}
	if c.Paths.Pattern == "" {
		c.Paths.Pattern = `(?i)\.` + c.Source.Format + `$`
	}
	if c.Paths.Snapshots == "" {
		c.Paths.Snapshots = "snapshots"
	}
	if c.Paths.SnapshotPrefix == "" {
		c.Paths.SnapshotPrefix = "cleaned_data"
	}
	if c.Paths.Archive == "" {
		c.Paths.Archive = ArchiveMove
	}
}

// Validate checks the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Source.Format != FormatCSV && c.Source.Format != FormatXLS {
		return xerrors.Errorf("source.format must be csv or xls, got %q", c.Source.Format)
	}
	if c.Source.SkipLeadingRows < 0 {
		return xerrors.New("source.skip_leading_rows must not be negative")
	}
	if len(c.Source.Columns) == 0 {
		return xerrors.New("source.columns is empty")
	}
	for _, sc := range c.Source.Columns {
		if sc.Name == "" {
			return xerrors.New("source column without name")
		}
		if sc.Type != schema.Text && sc.Type != schema.Real {
			return xerrors.Errorf("source column %q: type must be text or real, got %q", sc.Name, sc.Type)
		}
	}

	if len(c.ColumnsInOrder) == 0 {
		return xerrors.New("columns_in_order is empty")
	}
	seen := make(map[string]bool, len(c.ColumnsInOrder))
	for _, name := range c.ColumnsInOrder {
		if seen[name] {
			return xerrors.Errorf("column %q listed twice in columns_in_order", name)
		}
		seen[name] = true
	}
	for name, t := range c.ColumnTypes {
		if !seen[name] {
			return xerrors.Errorf("column_types names unknown column %q", name)
		}
		if !t.Valid() {
			return xerrors.Errorf("column %q: unknown type %q", name, t)
		}
	}
	for _, name := range []string{c.WellColumn, c.ResultColumn} {
		if !seen[name] {
			return xerrors.Errorf("column %q must be in columns_in_order", name)
		}
	}

	if (c.Routing.Site != "" || len(c.Routing.ExcludeSites) > 0) && !seen[c.SampleNameColumn] {
		return xerrors.Errorf("sample name column %q must be in columns_in_order", c.SampleNameColumn)
	}
	if c.SampleDate.Column != "" && !seen[c.SampleDate.Column] {
		return xerrors.Errorf("sample date column %q must be in columns_in_order", c.SampleDate.Column)
	}

	if c.SampleDate.Strip != "" {
		if _, err := regexp.Compile(c.SampleDate.Strip); err != nil {
			return xerrors.Errorf("sample_date.strip: %w", err)
		}
	}
	if _, err := regexp.Compile(c.Paths.Pattern); err != nil {
		return xerrors.Errorf("paths.pattern: %w", err)
	}
	if c.Routing.Path != transform.General && c.Routing.Path != transform.Site {
		return xerrors.Errorf("routing.path must be general or site, got %q", c.Routing.Path)
	}
	if c.Routing.Path == transform.Site && c.Routing.Site == "" {
		return xerrors.New("routing.site is required for the site path")
	}
	if c.Paths.Archive != ArchiveMove && c.Paths.Archive != ArchiveRemove {
		return xerrors.Errorf("paths.archive must be move or remove, got %q", c.Paths.Archive)
	}
	if c.Paths.Archive == ArchiveMove && c.Paths.Loaded == "" {
		return xerrors.New("paths.loaded is required to move processed files")
	}
	if _, err := c.Encoding(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	t := c.Table
	if t.Database == "" || t.Name == "" {
		return xerrors.New("table.database and table.name are required")
	}
	if len(t.PrimaryKey) == 0 {
		return xerrors.New("table.primary_key is empty")
	}
	for _, k := range append(append([]string{}, t.PrimaryKey...), t.UpdateColumns...) {
		if !seen[k] {
			return xerrors.Errorf("table column %q must be in columns_in_order", k)
		}
	}
	switch c.Warehouse {
	case "postgres", "bigquery":
	default:
		return xerrors.Errorf("warehouse must be postgres or bigquery, got %q", c.Warehouse)
	}

	return nil
}

// SourceSchema returns the declared source columns.
func (c *Config) SourceSchema() schema.Schema {
	s := make(schema.Schema, len(c.Source.Columns))
	for i, sc := range c.Source.Columns {
		s[i] = schema.Column{Name: sc.Name, Type: sc.Type}
	}
	return s
}

// TargetSchema returns the ordered, typed target columns. Untyped columns
// are text.
func (c *Config) TargetSchema() schema.Schema {
	s := make(schema.Schema, len(c.ColumnsInOrder))
	for i, name := range c.ColumnsInOrder {
		t, ok := c.ColumnTypes[name]
		if !ok {
			t = schema.Text
		}
		s[i] = schema.Column{Name: name, Type: t}
	}
	return s
}

// Mapper builds the schema mapper described by c.
func (c *Config) Mapper() *schema.Mapper {
	m := &schema.Mapper{
		Drop:       c.ColumnsToDrop,
		Order:      c.ColumnsInOrder,
		SampleDate: c.SampleDate.Column,
	}
	for _, sc := range c.Source.Columns {
		if sc.Target != "" {
			m.Mappings = append(m.Mappings, schema.Mapping{Source: sc.Name, Target: sc.Target})
		}
	}
	if c.SampleDate.Strip != "" {
		m.Strip = regexp.MustCompile(c.SampleDate.Strip)
	}
	return m
}

// Encoding returns the source encoding, or nil for UTF-8.
func (c *Config) Encoding() (encoding.Encoding, error) {
	if c.Source.Encoding == "" {
		return nil, nil
	}
	e, err := htmlindex.Get(c.Source.Encoding)
	if err != nil {
		return nil, xerrors.Errorf("source.encoding %q: %w", c.Source.Encoding, err)
	}
	return e, nil
}

// Location returns the zone laboratory timestamps are recorded in.
func (c *Config) Location() (*time.Location, error) {
	if c.Source.Location == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Source.Location)
	if err != nil {
		return nil, xerrors.Errorf("source.location %q: %w", c.Source.Location, err)
	}
	return loc, nil
}

// Transformer builds the record pipeline described by c.
func (c *Config) Transformer() (*transform.Transformer, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	return &transform.Transformer{
		Source: c.SourceSchema(),
		Target: c.TargetSchema(),
		Mapper: c.Mapper(),
		Filter: &transform.Filter{
			WellColumn:   c.WellColumn,
			ResultColumn: c.ResultColumn,
			Markers:      c.ExcludeMarkers,
		},
		Router: &transform.Router{
			Column:       c.SampleNameColumn,
			Site:         c.Routing.Site,
			Path:         c.Routing.Path,
			ExcludeSites: c.Routing.ExcludeSites,
		},
		Normalize:  wellnumber.Normalize,
		WellColumn: c.WellColumn,
		Location:   loc,
	}, nil
}
