package service

import "time"

// SeasonName returns the Indian climatic season of a month
func SeasonName(month int) string {
	switch month {
	case 12, 1, 2:
		return "Winter"
	case 3, 4, 5:
		return "Summer"
	case 6, 7, 8, 9:
		return "Monsoon"
	default:
		return "Post-Monsoon"
	}
}

// CroppingSeason returns kharif, rabi or zaid for a sowing month
func CroppingSeason(month int) string {
	switch month {
	case 6, 7, 8, 9, 10:
		return "kharif"
	case 11, 12, 1, 2, 3:
		return "rabi"
	default:
		return "zaid"
	}
}

// MonthName returns the English month name, or "" outside 1..12
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()
}
