/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package calendar

import "strings"

// Country codes with bundled holiday tables. NONE disables holiday labels.
type Country struct {
	Code string
	Name string
}

var Countries = []Country{
	{"NONE", "None"},
	{"SG", "Singapore"},
	{"MY", "Malaysia"},
	{"CN", "China"},
	{"US", "United States"},
	{"UK", "United Kingdom"},
}

type md struct{ month, day int }

// holidays2026 is keyed by country then (month index, day).
var holidays2026 = map[string]map[md]string{
	"SG": {
		{0, 1}: "New Year's Day", {1, 17}: "Chinese New Year", {1, 18}: "Chinese New Year",
		{2, 20}: "Hari Raya Puasa", {3, 3}: "Good Friday", {4, 1}: "Labour Day",
		{4, 27}: "Hari Raya Haji", {4, 31}: "Vesak Day", {7, 9}: "National Day",
		{10, 8}: "Deepavali", {11, 25}: "Christmas Day",
	},
	"MY": {
		{0, 1}: "New Year's Day", {1, 1}: "Federal Territory Day", {1, 17}: "Chinese New Year",
		{1, 18}: "Chinese New Year", {2, 20}: "Hari Raya Aidilfitri", {2, 21}: "Hari Raya Aidilfitri",
		{4, 1}: "Labour Day", {4, 27}: "Hari Raya Haji", {4, 31}: "Wesak Day",
		{5, 1}: "Agong's Birthday", {6, 19}: "Awal Muharram", {7, 31}: "Merdeka Day",
		{8, 16}: "Malaysia Day", {10, 8}: "Deepavali", {11, 25}: "Christmas Day",
	},
	"US": {
		{0, 1}: "New Year's Day", {0, 19}: "Martin Luther King Jr. Day", {1, 16}: "Presidents' Day",
		{4, 25}: "Memorial Day", {5, 19}: "Juneteenth", {6, 4}: "Independence Day",
		{8, 7}: "Labor Day", {9, 12}: "Columbus Day", {10, 11}: "Veterans Day",
		{10, 26}: "Thanksgiving Day", {11, 25}: "Christmas Day",
	},
	"UK": {
		{0, 1}: "New Year's Day", {3, 3}: "Good Friday", {3, 6}: "Easter Monday",
		{4, 4}: "Early May Bank Holiday", {4, 25}: "Spring Bank Holiday", {7, 31}: "Summer Bank Holiday",
		{11, 25}: "Christmas Day", {11, 26}: "Boxing Day",
	},
	"CN": {
		{0, 1}: "New Year's Day", {1, 17}: "Spring Festival", {1, 18}: "Spring Festival",
		{1, 19}: "Spring Festival", {3, 5}: "Tomb Sweeping Day", {4, 1}: "Labour Day",
		{5, 19}: "Dragon Boat Festival", {8, 25}: "Mid-Autumn Festival", {9, 1}: "National Day",
		{9, 2}: "National Day", {9, 3}: "National Day",
	},
}

// Holiday returns the label for a day, or "" when there is none.
// Only 2026 is bundled; other years have no labels.
func Holiday(country string, year, month, day int) string {
	if year != 2026 {
		return ""
	}
	return holidays2026[strings.ToUpper(country)][md{month, day}]
}

// HolidaysIn returns day -> label for one month.
func HolidaysIn(country string, year, month int) map[int]string {
	out := map[int]string{}
	if year != 2026 {
		return out
	}
	for k, v := range holidays2026[strings.ToUpper(country)] {
		if k.month == month {
			out[k.day] = v
		}
	}
	return out
}
