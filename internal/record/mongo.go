package record

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"structnotify/internal/logger"
	"structnotify/pkg/metrics"
	"structnotify/pkg/tracing"
)

// schemaDef is the registry document describing one schema's columns.
type schemaDef struct {
	Name    string   `bson:"name"`
	Columns []Column `bson:"columns"`
}

// rowDoc is the stored shape of one structured record. fields holds raw
// values (scalar or list), display optional human-rendered overrides, meta
// the synthetic bookkeeping columns.
type rowDoc struct {
	ID      primitive.ObjectID     `bson:"_id,omitempty"`
	PID     string                 `bson:"pid"`
	Fields  map[string]interface{} `bson:"fields"`
	Display map[string]interface{} `bson:"display,omitempty"`
	Meta    map[string]interface{} `bson:"meta,omitempty"`
}

// syntheticMetaKeys maps synthetic column specs onto meta document keys.
var syntheticMetaKeys = map[string]string{
	"%pageid%":      "pageid",
	"%title%":       "title",
	"%lastupdate%":  "lastupdate",
	"%lasteditor%":  "lasteditor",
	"%lastsummary%": "lastsummary",
}

// MongoSource reads structured records from MongoDB: one registry collection
// holding schema definitions, one collection per schema holding rows.
type MongoSource struct {
	db       *mongo.Database
	registry string
	logger   logger.Logger
}

func NewMongoSource(db *mongo.Database, registry string, log logger.Logger) *MongoSource {
	return &MongoSource{
		db:       db,
		registry: registry,
		logger:   log,
	}
}

func (s *MongoSource) Execute(ctx context.Context, q Query) ([]Row, error) {
	ctx, span := tracing.GetTracer("record-source").Start(ctx, "record.execute")
	defer span.End()

	start := time.Now()
	rows, err := s.execute(ctx, q)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ObserveRecordSourceQueryDuration(time.Since(start), status)

	return rows, err
}

func (s *MongoSource) execute(ctx context.Context, q Query) ([]Row, error) {
	if len(q.Schemas) == 0 {
		return nil, fmt.Errorf("query names no schemas")
	}

	var rows []Row
	for _, schema := range q.Schemas {
		def, err := s.loadSchema(ctx, schema)
		if err != nil {
			return nil, err
		}

		schemaRows, err := s.queryRows(ctx, def, q)
		if err != nil {
			return nil, err
		}
		rows = append(rows, schemaRows...)
	}

	return rows, nil
}

func (s *MongoSource) loadSchema(ctx context.Context, name string) (*schemaDef, error) {
	var def schemaDef
	err := s.db.Collection(s.registry).FindOne(ctx, bson.M{"name": name}).Decode(&def)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("schema %q not registered", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %q: %w", name, err)
	}
	return &def, nil
}

func (s *MongoSource) queryRows(ctx context.Context, def *schemaDef, q Query) ([]Row, error) {
	filter, err := buildFilter(def.Name, q.Filters)
	if err != nil {
		return nil, err
	}

	cursor, err := s.db.Collection(def.Name).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "pid", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query schema %q: %w", def.Name, err)
	}
	defer cursor.Close(ctx)

	var rows []Row
	for cursor.Next(ctx) {
		var doc rowDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode row in schema %q: %w", def.Name, err)
		}
		rows = append(rows, s.assembleRow(def, doc, q.Columns))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error in schema %q: %w", def.Name, err)
	}

	return rows, nil
}

// assembleRow orders values as requested: declared columns for "table.*"
// specs, then synthetic columns, preserving the query's column order.
func (s *MongoSource) assembleRow(def *schemaDef, doc rowDoc, columnSpecs []string) Row {
	rowID := doc.PID
	if rowID == "" {
		rowID = doc.ID.Hex()
	}

	row := Row{ID: rowID}
	for _, spec := range columnSpecs {
		switch {
		case spec == def.Name+".*":
			for _, col := range def.Columns {
				col.Table = def.Name
				raw := coerceScalars(doc.Fields[col.Label])
				display := coerceScalars(doc.Display[col.Label])
				if len(display) == 0 {
					display = raw
				}
				row.Values = append(row.Values, NewValue(col, raw, display))
			}
		case spec == "%rowid%":
			col := Column{Label: "%rowid%", Type: "text"}
			row.Values = append(row.Values, NewValue(col, []string{rowID}, nil))
		default:
			if key, ok := syntheticMetaKeys[spec]; ok {
				col := Column{Label: spec, Type: "text"}
				raw := coerceScalars(doc.Meta[key])
				row.Values = append(row.Values, NewValue(col, raw, nil))
			}
			// Column specs for other schemas are handled in their own pass.
		}
	}

	return row
}

// coerceScalars flattens a stored field into its scalar list form.
func coerceScalars(v interface{}) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return []string{val}
	case []string:
		return val
	case primitive.A:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return []string{fmt.Sprintf("%v", val)}
	}
}

// buildFilter translates AND-combined clauses into a Mongo filter. Clause
// columns may be bare labels, "schema.label" qualified, or synthetic.
func buildFilter(schema string, clauses []FilterClause) (bson.M, error) {
	if len(clauses) == 0 {
		return bson.M{}, nil
	}

	var and []bson.M
	for _, clause := range clauses {
		key, ok, err := filterKey(schema, clause.Column)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Clause qualified for another schema in a multi-schema query.
			continue
		}

		cond, err := comparatorCondition(clause)
		if err != nil {
			return nil, err
		}

		and = append(and, bson.M{key: cond})
	}

	if len(and) == 0 {
		return bson.M{}, nil
	}
	return bson.M{"$and": and}, nil
}

func filterKey(schema, column string) (string, bool, error) {
	if key, ok := syntheticMetaKeys[column]; ok {
		return "meta." + key, true, nil
	}
	if column == "%rowid%" {
		return "pid", true, nil
	}

	label := column
	if strings.Contains(column, ".") {
		parts := strings.SplitN(column, ".", 2)
		if parts[0] != schema {
			return "", false, nil
		}
		label = parts[1]
	}
	if label == "" {
		return "", false, fmt.Errorf("blank column in filter clause")
	}

	return "fields." + label, true, nil
}

func comparatorCondition(clause FilterClause) (interface{}, error) {
	switch clause.Comparator {
	case "=":
		return clause.Value, nil
	case "!=":
		return bson.M{"$ne": clause.Value}, nil
	case "<":
		return bson.M{"$lt": clause.Value}, nil
	case "<=":
		return bson.M{"$lte": clause.Value}, nil
	case ">":
		return bson.M{"$gt": clause.Value}, nil
	case ">=":
		return bson.M{"$gte": clause.Value}, nil
	case "~":
		return bson.M{"$regex": clause.Value}, nil
	case "!~":
		return bson.M{"$not": bson.M{"$regex": clause.Value}}, nil
	default:
		return nil, fmt.Errorf("unsupported comparator %q", clause.Comparator)
	}
}
