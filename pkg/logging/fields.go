package logging

import "time"

// Common field constructors
func String(key, value string) Field { return Field{Key: key, Value: value} }
func Int(key string, value int) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Validator-specific field helpers

func Component(name string) Field   { return String("component", name) }
func RunID(id string) Field         { return String("run_id", id) }
func Strategy(name string) Field    { return String("strategy", name) }
func Trigger(name string) Field     { return String("trigger", name) }
func Rule(name string) Field        { return String("rule", name) }
func Nodes(n int) Field             { return Int("nodes", n) }
func Relationships(n int) Field     { return Int("relationships", n) }
func Violations(n int) Field        { return Int("violations", n) }
func Store(uri string) Field        { return String("store", uri) }
func Latency(d time.Duration) Field { return Duration("latency", d) }
