package utils

import (
	"encoding/json"
)

// Помощники для защитного разбора нестабильных JSON-ответов сервиса анализа.
// Форма отчета меняется между версиями endpoint'ов, поэтому каждое поле
// резолвится через явную упорядоченную цепочку кандидатов, а не ad hoc if'ами.

// AsMap приводит значение к JSON-объекту
func AsMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

// AsSlice приводит значение к JSON-массиву
func AsSlice(v interface{}) ([]interface{}, bool) {
	s, ok := v.([]interface{})
	return s, ok
}

// FirstString возвращает первое непустое строковое значение по цепочке ключей
func FirstString(m map[string]interface{}, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// FirstNumber возвращает первое числовое значение по цепочке ключей.
// JSON-числа приходят как float64; строки с числами не принимаем.
func FirstNumber(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch n := v.(type) {
			case float64:
				return n, true
			case int:
				return float64(n), true
			}
		}
	}
	return 0, false
}

// FirstSlice возвращает первый массив по цепочке ключей
func FirstSlice(m map[string]interface{}, keys ...string) ([]interface{}, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := AsSlice(v); ok {
				return s, true
			}
		}
	}
	return nil, false
}

// Dig спускается по вложенным объектам: Dig(m, "a", "b") == m["a"]["b"]
func Dig(m map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = m
	for _, key := range path {
		obj, ok := AsMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// DigNumber числовое значение по вложенному пути
func DigNumber(m map[string]interface{}, path ...string) (float64, bool) {
	v, ok := Dig(m, path...)
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}

// DigString строковое значение по вложенному пути
func DigString(m map[string]interface{}, path ...string) (string, bool) {
	v, ok := Dig(m, path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// TruncateString обрезает строку до maxLen с маркером "..."
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// BoundedDump сериализует значение в JSON и ограничивает длину дампа.
// Используется для улик неизвестного типа.
func BoundedDump(v interface{}, maxLen int) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return TruncateString(string(data), maxLen)
}
