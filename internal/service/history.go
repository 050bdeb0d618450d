package service

import (
	"sort"

	"github.com/awakra/to-do-list/internal/models/task"
)

const monthLayout = "2006-01"

type MonthCount struct {
	Month string
	Count int
}

// CompletedHistory история выполненных задач с разбивкой по месяцам создания
type CompletedHistory struct {
	Tasks   []*task.Task
	Monthly map[string]int
	Months  []MonthCount // от новых месяцев к старым
	Total   int
}

func NewCompletedHistory(tasks []*task.Task) *CompletedHistory {
	monthly, months := AggregateByMonth(tasks)
	return &CompletedHistory{
		Tasks:   tasks,
		Monthly: monthly,
		Months:  months,
		Total:   len(tasks),
	}
}

// AggregateByMonth считает задачи по месяцу created_at (UTC)
func AggregateByMonth(tasks []*task.Task) (map[string]int, []MonthCount) {
	monthly := make(map[string]int)
	for _, t := range tasks {
		monthly[t.CreatedAt.UTC().Format(monthLayout)]++
	}

	months := make([]MonthCount, 0, len(monthly))
	for month, count := range monthly {
		months = append(months, MonthCount{Month: month, Count: count})
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month > months[j].Month
	})
	return monthly, months
}
