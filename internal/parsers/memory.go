package parsers

import (
	"bufio"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const kibPerGiB = 1024 * 1024

var (
	memInfo    = regexp.MustCompile(`(?s)MemTotal:\s*(\d+) kB.*?MemAvailable:\s*(\d+) kB`)
	storageRow = regexp.MustCompile(`^\S+\s+(\d+)\s+(\d+)\s+(\d+)\s+\d+%\s+(/data|/storage/emulated/0)\s*$`)
)

// ParseMemory reads MemTotal and MemAvailable (kB) from a meminfo dump and
// reports both in GB rounded to one decimal.
func ParseMemory(raw string) []Sample {
	m := memInfo.FindStringSubmatch(raw)
	if m == nil {
		return []Sample{text("ram_total", Unknown), text("ram_available", Unknown)}
	}
	total, errTotal := strconv.ParseUint(m[1], 10, 64)
	avail, errAvail := strconv.ParseUint(m[2], 10, 64)
	if errTotal != nil || errAvail != nil {
		return []Sample{text("ram_total", Unknown), text("ram_available", Unknown)}
	}
	return []Sample{
		numeric("ram_total", kibToGB(total), "GB", 1),
		numeric("ram_available", kibToGB(avail), "GB", 1),
	}
}

func kibToGB(kib uint64) float64 {
	return math.Round(float64(kib)/kibPerGiB*10) / 10
}

// ParseStorage finds the df row for the user data partition and reports
// total, used and free space in whole GiB (1K-blocks floor-divided).
func ParseStorage(raw string) []Sample {
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		m := storageRow.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		blocks := make([]uint64, 3)
		ok := true
		for i := range blocks {
			v, err := strconv.ParseUint(m[i+1], 10, 64)
			if err != nil {
				ok = false
				break
			}
			blocks[i] = v
		}
		if !ok {
			continue
		}
		return []Sample{
			numeric("rom_total", float64(blocks[0]/kibPerGiB), "GiB", 0),
			numeric("rom_used", float64(blocks[1]/kibPerGiB), "GiB", 0),
			numeric("rom_free", float64(blocks[2]/kibPerGiB), "GiB", 0),
		}
	}
	return []Sample{text("rom_total", Unknown), text("rom_used", Unknown), text("rom_free", Unknown)}
}
