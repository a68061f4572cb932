package call

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/marmos91/nfscall/internal/protocol/nfs/rpc"
	"github.com/mitchellh/mapstructure"
)

// callConfig is the envelope part of a call configuration map.
type callConfig struct {
	XID       uint32      `mapstructure:"xid"`
	Direction Direction   `mapstructure:"direction"`
	Auth      *authConfig `mapstructure:"auth"`
}

// authConfig describes an AUTH_UNIX credential. Absent means AUTH_NULL.
type authConfig struct {
	Stamp   uint32   `mapstructure:"stamp"`
	Machine string   `mapstructure:"machine" validate:"max=255"`
	UID     uint32   `mapstructure:"uid"`
	GID     uint32   `mapstructure:"gid"`
	GIDs    []uint32 `mapstructure:"gids" validate:"max=16"`
}

// dirOpConfig is the "object" sub-map carrying diropargs3 fields.
type dirOpConfig struct {
	Dir  FileHandle `mapstructure:"dir"`
	Name string     `mapstructure:"name"`
}

var validate = validator.New()

var (
	fileHandleType = reflect.TypeOf(FileHandle(nil))
	directionType  = reflect.TypeOf(Direction(0))
)

// configDecodeHook turns strings into file handles (raw bytes of the
// string), direction names into Direction values and numeric text into
// integers. Values from env vars and flag maps arrive as strings.
func configDecodeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	switch to {
	case fileHandleType:
		return FileHandle(s), nil
	case directionType:
		return ParseDirection(s)
	}
	switch to.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(s, 0, to.Bits())
		if err != nil {
			return nil, fmt.Errorf("parse %q as %s: %w", s, to, err)
		}
		return reflect.ValueOf(v).Convert(to).Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(s, 0, to.Bits())
		if err != nil {
			return nil, fmt.Errorf("parse %q as %s: %w", s, to, err)
		}
		return reflect.ValueOf(v).Convert(to).Interface(), nil
	}
	return data, nil
}

func decodeInto(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: configDecodeHook,
		Result:     out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// decodeCallConfig splits a configuration map into an envelope and optional
// directory-operation arguments. args is nil when no object is given.
func decodeCallConfig(raw any) (Envelope, *DirOpArgs, error) {
	m, ok := toStringMap(raw)
	if !ok {
		return Envelope{}, nil, fmt.Errorf("%w: config must be a map, got %T", ErrInvalidConfig, raw)
	}

	var cfg callConfig
	if err := decodeInto(withoutKey(m, "object"), &cfg); err != nil {
		return Envelope{}, nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return Envelope{}, nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	env := Envelope{XID: cfg.XID, Direction: cfg.Direction, Cred: rpc.NullAuth(), Verf: rpc.NullAuth()}
	if cfg.Auth != nil {
		auth := rpc.UnixAuth{
			Stamp:       cfg.Auth.Stamp,
			MachineName: cfg.Auth.Machine,
			UID:         cfg.Auth.UID,
			GID:         cfg.Auth.GID,
			GIDs:        cfg.Auth.GIDs,
		}
		cred, err := auth.OpaqueAuth()
		if err != nil {
			return Envelope{}, nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		env.Cred = cred
	}

	obj, present := m["object"]
	if !present || obj == nil {
		return env, nil, nil
	}
	objMap, ok := toStringMap(obj)
	if !ok {
		return Envelope{}, nil, fmt.Errorf("%w: object must be a map, got %T", ErrInvalidConfig, obj)
	}

	var dc dirOpConfig
	if err := decodeInto(objMap, &dc); err != nil {
		return Envelope{}, nil, fmt.Errorf("%w: object: %v", ErrInvalidConfig, err)
	}
	return env, &DirOpArgs{Dir: dc.Dir, Name: dc.Name}, nil
}

// toStringMap copies any map kind (map[string]string, the map[any]any yaml
// produces, ...) into a map[string]any. Non-string keys are formatted.
func toStringMap(v any) (map[string]any, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		for k.Kind() == reflect.Interface && !k.IsNil() {
			k = k.Elem()
		}
		key := fmt.Sprint(k.Interface())
		if k.Kind() == reflect.String {
			key = k.String()
		}
		out[key] = iter.Value().Interface()
	}
	return out, true
}

func withoutKey(m map[string]any, key string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}
