package logging

import "time"

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint32(key string, value uint32) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Simulator-specific field helpers

func Component(name string) Field {
	return String("component", name)
}

func ASN(asn uint32) Field {
	return Uint32("asn", asn)
}

func Prefix(p string) Field {
	return String("prefix", p)
}

func Trial(n int) Field {
	return Int("trial", n)
}

func Scenario(name string) Field {
	return String("scenario", name)
}

func PolicyName(name string) Field {
	return String("policy", name)
}

func AdoptionPercent(p float64) Field {
	return Float64("adoption_percent", p)
}

func Count(key string, n int) Field {
	return Int(key, n)
}

func Elapsed(d time.Duration) Field {
	return Duration("duration", d)
}

func RunID(id string) Field {
	return String("run_id", id)
}
