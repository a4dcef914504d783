package main

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var statusCaser = cases.Title(language.English)

// statusLabel renders an enum value for humans: "ready_for_qc" -> "Ready For Qc".
func statusLabel(status string) string {
	return statusCaser.String(strings.ReplaceAll(status, "_", " "))
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatCount(n int) string {
	return strconv.Itoa(n)
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func parseIDArg(arg string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
}
