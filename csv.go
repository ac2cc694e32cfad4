package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"i4.energy/across/netmon/monitor"
	"i4.energy/across/netmon/netinfo"
)

var csvHeader = []string{
	"timestamp",
	"technology", "state", "mcc", "mnc", "cell_id", "pci", "channel", "band", "tac",
	"rsrp", "rsrq", "sinr",
	"csq_rssi", "csq_ber",
	"reg_cs", "reg_ps", "reg_eps", "reg_5gs",
	"sim_state", "operator", "attached",
	"neighbor_count",
}

// snapshotLogger appends one flattened row per snapshot to a CSV file
// named after the process start time.
type snapshotLogger struct {
	file   *os.File
	writer *csv.Writer
}

func newSnapshotLogger(dir string, started time.Time) (*snapshotLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	name := filepath.Join(dir, "netmon-"+started.Format("20060102-150405")+".csv")
	file, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create csv log: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		file.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return &snapshotLogger{file: file, writer: writer}, nil
}

func (l *snapshotLogger) Write(s *monitor.NetworkState, now time.Time) error {
	row := []string{now.Format(time.RFC3339)}
	row = append(row, servingRow(s.ServingCell)...)
	row = append(row, signalRow(s.Signal)...)
	row = append(row,
		regRow(s, netinfo.DomainCS),
		regRow(s, netinfo.DomainPS),
		regRow(s, netinfo.DomainEPS),
		regRow(s, netinfo.Domain5GS),
		strPtrColumn(s.SIMState),
		operatorRow(s.Operator),
		boolColumn(s.Attached),
		strconv.Itoa(len(s.NeighborCells)),
	)

	if err := l.writer.Write(row); err != nil {
		return err
	}
	l.writer.Flush()
	return l.writer.Error()
}

func (l *snapshotLogger) Close() error {
	l.writer.Flush()
	return l.file.Close()
}

func servingRow(cell *netinfo.ServingCell) []string {
	if cell == nil {
		return []string{"", "", "", "", "", "", "", "", ""}
	}
	return []string{
		cell.Technology.String(),
		cell.State,
		strPtrColumn(cell.MCC),
		strPtrColumn(cell.MNC),
		strPtrColumn(cell.CellID),
		intColumn(cell.PCI),
		intColumn(cell.Channel),
		intColumn(cell.Band),
		strPtrColumn(cell.TAC),
	}
}

func signalRow(sig netinfo.SignalMetrics) []string {
	row := []string{
		intColumn(sig.RSRP.Primary()),
		intColumn(sig.RSRQ.Primary()),
		intColumn(sig.SINR.Primary()),
	}
	if sig.CSQ != nil {
		return append(row, intColumn(sig.CSQ.RSSI), intColumn(sig.CSQ.BER))
	}
	return append(row, "", "")
}

func regRow(s *monitor.NetworkState, d netinfo.Domain) string {
	status, found := s.Registration[d]
	if !found {
		return ""
	}
	return status.State.String()
}

func operatorRow(op *netinfo.OperatorInfo) string {
	if op == nil {
		return ""
	}
	return op.Name
}

func intColumn(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func strPtrColumn(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func boolColumn(p *bool) string {
	if p == nil {
		return ""
	}
	return strconv.FormatBool(*p)
}
