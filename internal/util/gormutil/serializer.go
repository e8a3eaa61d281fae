package gormutil

import (
	"context"
	"fmt"
	"reflect"

	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
	"gorm.io/gorm/schema"
)

// RosterSerializer stores roster value types in their compact text form.
type RosterSerializer struct{}

func (RosterSerializer) Scan(ctx context.Context, field *schema.Field, dst reflect.Value, dbValue any) error {
	ty := field.FieldType
	if ty != reflect.TypeFor[roster.Division]() && ty != reflect.TypeFor[roster.Gender]() {
		return fmt.Errorf("bad field value type: %v", ty)
	}
	val := field.ReflectValueOf(ctx, dst)
	if dbValue == nil {
		val.Set(reflect.New(ty).Elem())
		return nil
	}
	var data string
	switch v := dbValue.(type) {
	case []byte:
		data = string(v)
	case string:
		data = v
	default:
		return fmt.Errorf("bad db value type: %T", dbValue)
	}
	switch ty {
	case reflect.TypeFor[roster.Division]():
		d, err := roster.DivisionFromString(data)
		if err != nil {
			return fmt.Errorf("division from string: %w", err)
		}
		val.Set(reflect.ValueOf(d))
	case reflect.TypeFor[roster.Gender]():
		var g roster.Gender
		if err := g.UnmarshalText([]byte(data)); err != nil {
			return fmt.Errorf("gender from string: %w", err)
		}
		val.Set(reflect.ValueOf(g))
	default:
		panic("must not happen")
	}
	return nil
}

func (RosterSerializer) Value(ctx context.Context, field *schema.Field, dst reflect.Value, fieldValue any) (any, error) {
	switch v := fieldValue.(type) {
	case roster.Division:
		return v.String(), nil
	case roster.Gender:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("bad value type %T", fieldValue)
	}
}

func init() {
	schema.RegisterSerializer("roster", RosterSerializer{})
}
