package db

import (
	"strings"

	"github.com/gartstein/companies/internal/company/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var columns = map[query.Field]string{
	query.FieldName:      "name",
	query.FieldIndustry:  "industry",
	query.FieldLocation:  "location",
	query.FieldSize:      "size",
	query.FieldFounded:   "founded",
	query.FieldCreatedAt: "created_at",
	query.FieldUpdatedAt: "updated_at",
}

// folded maps the filterable fields to their folded shadow columns.
var folded = map[query.Field]string{
	query.FieldName:     "name_lower",
	query.FieldIndustry: "industry_lower",
	query.FieldLocation: "location_lower",
	query.FieldSize:     "size_lower",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filterScope applies the query's conditions. Condition values are already
// folded, so they are compared against the folded columns.
func filterScope(q query.Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range q.Conditions {
			col, ok := folded[c.Field]
			if !ok {
				continue
			}
			switch c.Match {
			case query.Contains:
				db = db.Where(col+" LIKE ? ESCAPE '\\'", "%"+likeEscaper.Replace(c.Value)+"%")
			case query.Equals:
				db = db.Where(col+" = ?", c.Value)
			}
		}
		return db
	}
}

// orderScope sorts by the query's key, then by id for a stable order.
func orderScope(q query.Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		col, ok := columns[q.Order.Field]
		if !ok {
			col = columns[query.FieldName]
		}
		return db.
			Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: q.Order.Desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
}

func pageScope(q query.Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(q.Offset()).Limit(q.Limit())
	}
}
