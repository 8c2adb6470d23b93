// Package listener hooks the upload lifecycle into gorm callbacks so that
// uploadable models store, inject and delete their files automatically.
package listener

import (
	"context"
	"reflect"

	"gorm.io/gorm"

	"github.com/welldanyogia/webrana-uploadable/internal/uploader"
)

// PluginName is the name the plugin registers under
const PluginName = "uploadable"

// Plugin is a gorm.Plugin driving an uploader.Handler:
//
//	before create  -> Upload
//	before update  -> Upload, remembering the files it replaces
//	after commit   -> on failure delete the files written by the statement,
//	                  on success delete the replaced files
//	after delete   -> Remove, once committed
//	after query    -> Inject
type Plugin struct {
	handler *uploader.Handler
}

// Statement settings holding the keys touched by the running statement
const (
	writtenSetting  = PluginName + ":written"
	replacedSetting = PluginName + ":replaced"
)

// gorm's last create/update/delete callback
const commitCallback = "gorm:commit_or_rollback_transaction"

// New creates a Plugin
func New(handler *uploader.Handler) *Plugin {
	return &Plugin{handler: handler}
}

// Name implements gorm.Plugin
func (p *Plugin) Name() string {
	return PluginName
}

// Initialize implements gorm.Plugin
func (p *Plugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").
		Register(PluginName+":upload", p.run(p.upload)); err != nil {
		return err
	}
	if err := cb.Create().After(commitCallback).
		Register(PluginName+":finish_create", p.finish); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").
		Register(PluginName+":replace", p.run(p.replace)); err != nil {
		return err
	}
	if err := cb.Update().After(commitCallback).
		Register(PluginName+":finish_update", p.finish); err != nil {
		return err
	}
	if err := cb.Delete().After(commitCallback).
		Register(PluginName+":remove", p.run(p.remove)); err != nil {
		return err
	}
	return cb.Query().After("gorm:query").
		Register(PluginName+":inject", p.run(p.inject))
}

func (p *Plugin) upload(db *gorm.DB, obj any) error {
	keys, err := p.handler.UploadKeys(db.Statement.Context, obj)
	appendKeys(db, writtenSetting, keys)
	return err
}

func (p *Plugin) replace(db *gorm.DB, obj any) error {
	replaced, err := p.handler.Replaced(obj)
	if err != nil {
		return err
	}
	if err := p.upload(db, obj); err != nil {
		return err
	}
	appendKeys(db, replacedSetting, replaced)
	return nil
}

func (p *Plugin) remove(db *gorm.DB, obj any) error {
	return p.handler.Remove(db.Statement.Context, obj)
}

func (p *Plugin) inject(db *gorm.DB, obj any) error {
	return p.handler.Inject(db.Statement.Context, obj)
}

// finish deletes what the statement left unreferenced: the new files when
// it failed, the replaced ones when it succeeded.
func (p *Plugin) finish(db *gorm.DB) {
	if db.Statement == nil {
		return
	}
	written := takeKeys(db, writtenSetting)
	replaced := takeKeys(db, replacedSetting)

	discard := replaced
	if db.Error != nil {
		discard = written
	}
	if len(discard) == 0 {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	// cleanup outlives a cancelled request
	if err := p.handler.Discard(context.WithoutCancel(ctx), discard); err != nil {
		db.Logger.Warn(ctx, "uploadable: %v", err)
	}
}

func appendKeys(db *gorm.DB, setting string, keys []string) {
	if len(keys) == 0 {
		return
	}
	if prev, ok := db.Statement.Settings.Load(setting); ok {
		keys = append(prev.([]string), keys...)
	}
	db.Statement.Settings.Store(setting, keys)
}

func takeKeys(db *gorm.DB, setting string) []string {
	v, ok := db.Statement.Settings.LoadAndDelete(setting)
	if !ok {
		return nil
	}
	return v.([]string)
}

func (p *Plugin) run(fn func(db *gorm.DB, obj any) error) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error != nil || db.Statement == nil {
			return
		}
		if db.Statement.Context == nil {
			db.Statement.Context = context.Background()
		}

		for _, obj := range targets(db.Statement.ReflectValue) {
			if !p.handler.IsUploadable(obj) {
				// a statement holds one model type
				return
			}
			if err := fn(db, obj); err != nil {
				_ = db.AddError(err)
				return
			}
		}
	}
}

// targets returns addressable pointers to the models held by v, which is
// a struct, a pointer or a slice/array of either.
func targets(v reflect.Value) []any {
	for v.IsValid() && v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Struct:
		if obj, ok := addr(v); ok {
			return []any{obj}
		}
	case reflect.Slice, reflect.Array:
		out := make([]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			for elem.Kind() == reflect.Pointer || elem.Kind() == reflect.Interface {
				if elem.IsNil() {
					break
				}
				elem = elem.Elem()
			}
			if elem.Kind() != reflect.Struct {
				continue
			}
			if obj, ok := addr(elem); ok {
				out = append(out, obj)
			}
		}
		return out
	}
	return nil
}

func addr(v reflect.Value) (any, bool) {
	if !v.CanAddr() || !v.Addr().CanInterface() {
		return nil, false
	}
	return v.Addr().Interface(), true
}
