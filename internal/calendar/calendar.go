/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package calendar provides month grid geometry: pages are months 0..11 and
// slots are day numbers 1..Days.
package calendar

import "time"

// Month describes one page of the planner.
type Month struct {
	Year         int
	Index        int // 0 = January
	Name         string
	Days         int
	StartWeekday int // 0 = Sunday
}

// MonthOf returns the geometry of month idx (0..11) in year. Out-of-range
// indexes roll over into neighbouring years like time.Date does.
func MonthOf(year, idx int) Month {
	first := time.Date(year, time.Month(idx+1), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return Month{
		Year:         first.Year(),
		Index:        int(first.Month()) - 1,
		Name:         first.Month().String(),
		Days:         last.Day(),
		StartWeekday: int(first.Weekday()),
	}
}

// Year returns all twelve months.
func Year(year int) []Month {
	out := make([]Month, 12)
	for i := range out {
		out[i] = MonthOf(year, i)
	}
	return out
}

// Cells lays the month out in a Sunday-first grid. Leading blanks are 0,
// every other entry is a day number. The result is padded to whole weeks.
func (m Month) Cells() []int {
	n := m.StartWeekday + m.Days
	if r := n % 7; r != 0 {
		n += 7 - r
	}
	out := make([]int, n)
	for d := 1; d <= m.Days; d++ {
		out[m.StartWeekday+d-1] = d
	}
	return out
}

// Rows is the number of week rows in the grid.
func (m Month) Rows() int { return len(m.Cells()) / 7 }

// ValidDay reports whether day is a slot on this page.
func (m Month) ValidDay(day int) bool { return day >= 1 && day <= m.Days }

// Weekdays are the grid column headers.
var Weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
