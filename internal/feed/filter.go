package feed

import (
	"fmt"
	"strings"
)

// filterTemplate — серверная фильтр-функция design-документа.
const filterTemplate = `function(doc, req) {
  if(%s) {
        return true;
    }
    return false;
}`

// condition собирает дизъюнкцию сравнений place со значениями items:
// ("doc.lotType" == "a" || "doc.lotType" == "b"). Пустой список значений
// даёт пустую строку — группа опускается.
func condition(place string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s == %q", place, item)
	}
	return "(" + strings.Join(parts, " || ") + ")"
}

// BuildCondition строит предикат фильтра:
// (lotType==A || lotType==B) && (status==X || status==Y),
// пустые группы опускаются.
func BuildCondition(lotAliases, handledStatuses []string) string {
	var groups []string
	for _, g := range []string{
		condition("doc.lotType", lotAliases),
		condition("doc.status", handledStatuses),
	} {
		if g != "" {
			groups = append(groups, g)
		}
	}
	return strings.Join(groups, " && ")
}

// BuildFilter оборачивает предикат в фильтр-функцию design-документа.
func BuildFilter(condition string) string {
	return fmt.Sprintf(filterTemplate, condition)
}
