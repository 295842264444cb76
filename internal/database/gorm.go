package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/itzrizvi/yooda-hostel-server/internal/model"
)

const gormBatchSize = 500

// GormStore keeps every collection in its own table. Column names match the
// document field names so filters and patches work unchanged.
type GormStore struct {
	db     *gorm.DB
	tables map[string]reflect.Type
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	models := map[string]any{
		model.FoodItemCollection:     &model.FoodItem{},
		model.StudentCollection:      &model.Student{},
		model.DistributionCollection: &model.Distribution{},
	}

	s := &GormStore{db: db, tables: make(map[string]reflect.Type, len(models))}
	for name, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return nil, fmt.Errorf("auto-migrate %s: %w", name, err)
		}
		s.tables[name] = reflect.TypeOf(m).Elem()
	}
	return s, nil
}

func (s *GormStore) Collection(name string) (Collection, error) {
	typ, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return &gormCollection{db: s.db, typ: typ}, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormCollection struct {
	db  *gorm.DB
	typ reflect.Type
}

// newModel returns a fresh *T for the table. gorm writes into Model during
// updates, so a shared instance would race between requests.
func (c *gormCollection) newModel() any {
	return reflect.New(c.typ).Interface()
}

func (c *gormCollection) scope(tx *gorm.DB, f Filter) *gorm.DB {
	tx = tx.Model(c.newModel())
	for _, expr := range whereExprs(f) {
		tx = tx.Where(expr)
	}
	return tx
}

func (c *gormCollection) InsertOne(ctx context.Context, doc Document) (*InsertResult, error) {
	if doc.DocumentID() == "" {
		doc.SetDocumentID(uuid.NewString())
	}
	if err := c.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return &InsertResult{Acknowledged: true, InsertedID: doc.DocumentID()}, nil
}

func (c *gormCollection) InsertMany(ctx context.Context, docs []Document) (*InsertManyResult, error) {
	out := &InsertManyResult{Acknowledged: true, InsertedIDs: make([]string, 0, len(docs))}
	if len(docs) == 0 {
		return out, nil
	}

	rows := reflect.MakeSlice(reflect.SliceOf(reflect.PointerTo(c.typ)), 0, len(docs))
	for _, d := range docs {
		if d.DocumentID() == "" {
			d.SetDocumentID(uuid.NewString())
		}
		rows = reflect.Append(rows, reflect.ValueOf(d))
		out.InsertedIDs = append(out.InsertedIDs, d.DocumentID())
	}
	if err := c.db.WithContext(ctx).CreateInBatches(rows.Interface(), gormBatchSize).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gormCollection) Find(ctx context.Context, filter Filter, out any) error {
	return c.scope(c.db.WithContext(ctx), filter).Find(out).Error
}

func (c *gormCollection) UpdateOne(ctx context.Context, filter Filter, patch Patch, upsert bool) (*UpdateResult, error) {
	res := &UpdateResult{Acknowledged: true}
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		matched, modified, err := c.update(tx, filter, patch)
		if err != nil {
			return err
		}
		res.MatchedCount, res.ModifiedCount = matched, modified
		if matched > 0 || !upsert {
			return nil
		}

		// No match: insert a document built from the equality filter plus the patch.
		row := make(map[string]any, len(filter)+len(patch))
		for k, v := range filter {
			if _, isSet := v.(In); !isSet {
				row[column(k)] = v
			}
		}
		for k, v := range patch {
			row[column(k)] = v
		}
		id, _ := row["id"].(string)
		if id == "" {
			id = uuid.NewString()
			row["id"] = id
		}
		if err := tx.Model(c.newModel()).Create(row).Error; err != nil {
			return err
		}
		res.UpsertedCount = 1
		res.UpsertedID = &id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *gormCollection) UpdateMany(ctx context.Context, filter Filter, patch Patch) (*UpdateResult, error) {
	res := &UpdateResult{Acknowledged: true}
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res.MatchedCount, res.ModifiedCount, err = c.update(tx, filter, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// update counts the rows matching filter, then applies patch to the rows
// whose values would change. The second count is the modified count.
func (c *gormCollection) update(tx *gorm.DB, filter Filter, patch Patch) (matched, modified int64, err error) {
	if err := c.scope(tx, filter).Count(&matched).Error; err != nil {
		return 0, 0, err
	}
	if matched == 0 || len(patch) == 0 {
		return matched, 0, nil
	}

	values := make(map[string]any, len(patch))
	changed := make([]clause.Expression, 0, 2*len(patch))
	for _, k := range sortedKeys(patch) {
		col := clause.Column{Name: column(k)}
		values[column(k)] = patch[k]
		changed = append(changed, clause.Neq{Column: col, Value: patch[k]}, clause.Eq{Column: col, Value: nil})
	}

	result := c.scope(tx, filter).Where(clause.Or(changed...)).Updates(values)
	if result.Error != nil {
		return 0, 0, result.Error
	}
	return matched, result.RowsAffected, nil
}

func (c *gormCollection) DeleteOne(ctx context.Context, filter Filter) (*DeleteResult, error) {
	result := c.scope(c.db.WithContext(ctx), filter).Delete(c.newModel())
	if result.Error != nil {
		return nil, result.Error
	}
	return &DeleteResult{Acknowledged: true, DeletedCount: result.RowsAffected}, nil
}

func whereExprs(f Filter) []clause.Expression {
	exprs := make([]clause.Expression, 0, len(f))
	for _, k := range sortedKeys(f) {
		col := clause.Column{Name: column(k)}
		if in, ok := f[k].(In); ok {
			exprs = append(exprs, clause.IN{Column: col, Values: []any(in)})
			continue
		}
		exprs = append(exprs, clause.Eq{Column: col, Value: f[k]})
	}
	return exprs
}

func column(field string) string {
	if field == IDField {
		return "id"
	}
	return field
}

func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
