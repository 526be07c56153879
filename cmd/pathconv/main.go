// pathconv converts lane_waypoints INSERT statements to path_list.yaml.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/siegeline/siege/internal/data"
	"gopkg.in/yaml.v3"
)

// Pattern: INSERT INTO `lane_waypoints` VALUES ('north', '0', '12.5', '0', '-4');
var insertRe = regexp.MustCompile(`VALUES\s*\(\s*'([^']*)'\s*,\s*'(-?\d+)'\s*,\s*'(-?[\d.]+)'\s*,\s*'(-?[\d.]+)'\s*,\s*'(-?[\d.]+)'\s*\)`)

type row struct {
	lane string
	seq  int
	wp   data.Waypoint
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: pathconv <lane_waypoints.sql> <output.yaml>")
		os.Exit(1)
	}

	inFile, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer inFile.Close()

	lanes, err := parse(inFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out, err := os.Create(os.Args[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer out.Close()

	if err := write(out, lanes); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d lanes to %s\n", len(lanes), os.Args[2])
}

// parse groups waypoint rows by lane in first-seen order and sorts each
// lane by sequence number. Lines that are not inserts are skipped.
func parse(r io.Reader) ([]data.LanePath, error) {
	var order []string
	rows := make(map[string][]row)

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 1024*1024)
	scanner.Buffer(buf, len(buf))

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "INSERT INTO") {
			continue
		}
		m := insertRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		seq, _ := strconv.Atoi(m[2])
		x, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return nil, fmt.Errorf("lane %s seq %d: x: %w", m[1], seq, err)
		}
		y, err := strconv.ParseFloat(m[4], 64)
		if err != nil {
			return nil, fmt.Errorf("lane %s seq %d: y: %w", m[1], seq, err)
		}
		z, err := strconv.ParseFloat(m[5], 64)
		if err != nil {
			return nil, fmt.Errorf("lane %s seq %d: z: %w", m[1], seq, err)
		}
		if _, seen := rows[m[1]]; !seen {
			order = append(order, m[1])
		}
		rows[m[1]] = append(rows[m[1]], row{lane: m[1], seq: seq, wp: data.Waypoint{X: x, Y: y, Z: z}})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sql: %w", err)
	}

	lanes := make([]data.LanePath, 0, len(order))
	for _, name := range order {
		rs := rows[name]
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].seq < rs[j].seq })
		lp := data.LanePath{Name: name, Waypoints: make([]data.Waypoint, len(rs))}
		for i, r := range rs {
			lp.Waypoints[i] = r.wp
		}
		lanes = append(lanes, lp)
	}
	return lanes, nil
}

func write(w io.Writer, lanes []data.LanePath) error {
	fmt.Fprintf(w, "# Lane paths, auto-generated from lane_waypoints.sql (%d lanes)\n", len(lanes))
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(struct {
		Lanes []data.LanePath `yaml:"lanes"`
	}{lanes}); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
