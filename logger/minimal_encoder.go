package logger

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

type palette struct {
	fg        string
	time      string
	component string
	namespace string
	number    string
	warn      string
	warnBg    string
	err       string
	errBg     string
}

var themes = map[string]palette{
	// Gruvbox Dark (warm, muted)
	"gruvbox": {
		fg:        "\x1b[38;5;223m",
		time:      "\x1b[38;5;108m",
		component: "\x1b[38;5;208m",
		namespace: "\x1b[38;5;109m",
		number:    "\x1b[38;5;175m",
		warn:      "\x1b[38;5;214m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;88m",
	},
	// Everforest Dark (forest greens)
	"everforest": {
		fg:        "\x1b[38;5;223m",
		time:      "\x1b[38;5;107m",
		component: "\x1b[38;5;108m",
		namespace: "\x1b[38;5;109m",
		number:    "\x1b[38;5;108m",
		warn:      "\x1b[38;5;179m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;52m",
	},
}

var currentTheme = "everforest"

// SetTheme configures the color scheme for log output. Unknown names are ignored.
func SetTheme(theme string) {
	if _, ok := themes[theme]; ok {
		currentTheme = theme
	}
}

func colors() palette {
	return themes[currentTheme]
}

// minimalEncoder implements a compact console encoder with theme support
// Format: "13:04:35  c.build  Converted namespace  alarms (12ms)"
type minimalEncoder struct {
	zapcore.Encoder // base encoder for field serialization
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := colors()
	final := buffer.NewPool().Get()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only shown for WARN and above
	if ent.Level > zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(c.component)
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(c.fg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if values := extractFieldValues(fields); values != "" {
		final.AppendString("  ")
		final.AppendString(values)
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for WARN/ERROR
func levelColorString(level zapcore.Level) string {
	c := colors()
	switch level {
	case zapcore.WarnLevel:
		return colorBold + c.warnBg + c.warn + "WARN" + colorReset
	case zapcore.ErrorLevel:
		return colorBold + c.errBg + c.err + "ERROR" + colorReset
	default:
		return colorBold + c.errBg + c.err + level.CapitalString() + colorReset
	}
}

// abbreviateName shortens component names: catalog.build -> c.build
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// getFieldValue extracts the value from a zap field, handling different field types
func getFieldValue(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.Float64Type:
		return strconv.FormatFloat(math.Float64frombits(uint64(field.Integer)), 'g', -1, 64)
	case zapcore.BoolType:
		if field.Integer == 1 {
			return "true"
		}
		return "false"
	}
	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}
	return ""
}

// extractFieldValues renders known fields compactly and the rest as key=value.
// Input: {"namespace": "alarms", "duration_ms": 12, "file": "alarms.idl"}
// Output: "alarms (12ms) file=alarms.idl"
func extractFieldValues(fields []zapcore.Field) string {
	c := colors()
	var values []string
	var duration string

	for _, field := range fields {
		val := getFieldValue(field)
		if val == "" {
			continue
		}
		switch field.Key {
		case FieldNamespace:
			values = append(values, c.namespace+val+colorReset)
		case FieldDurationMS:
			duration = val
		case FieldCount:
			values = append(values, c.number+val+colorReset)
		default:
			values = append(values, field.Key+"="+val)
		}
	}

	if duration != "" {
		values = append(values, c.fg+"("+c.number+duration+colorReset+c.fg+"ms)"+colorReset)
	}

	return strings.Join(values, " ")
}
