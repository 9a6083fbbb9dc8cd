// highwaysim runs a multi-lane Nagel-Schreckenberg traffic simulation for
// a fixed number of rounds and emits a JSON result record, optionally
// writing a PNG raster, a text trace, and/or serving a live dashboard.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"highwaysim/live"
	"highwaysim/result"
	"highwaysim/roadsim"
	"highwaysim/scenario"
	"highwaysim/snapshot"
)

func init() {
	pflag.String("scenario", "", "path to a YAML scenario file; overrides the flags below when given")
	pflag.Int("lanes", 1, "number of lanes")
	pflag.Int("length", 100, "cells per lane")
	pflag.Int("rounds", 100, "number of rounds to simulate")
	pflag.StringArray("vehicle", nil, "vehicle blueprint literal (max_speed,accel_time,density); repeatable")
	pflag.Float32("dilly-dally", 0.1, "dilly-dally probability in [0,1]")
	pflag.Float32("stay-in-lane", 0.5, "stay-in-lane probability in [0,1]")
	pflag.StringArray("block", nil, "blocked cell range literal (lane,start-end); repeatable")
	pflag.StringArray("traffic-light", nil, "traffic light cell literal (lane,index); repeatable")
	pflag.StringArray("monitor", nil, "monitored cell literal (lane,index); repeatable")
	pflag.Int64("seed", 1, "RNG seed")
	pflag.String("image", "", "write a PNG raster of the run to this path")
	pflag.String("dashboard", "", "serve a live websocket dashboard at this address, e.g. :8080")
	pflag.Bool("verbose", false, "write a text trace of every round to stderr")

	pflag.Parse()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		panic(err)
	}
}

func loadScenario() (*scenario.Scenario, error) {
	if path := viper.GetString("scenario"); path != "" {
		return scenario.Load(path)
	}
	sc := &scenario.Scenario{
		Lanes:         viper.GetInt("lanes"),
		Length:        viper.GetInt("length"),
		Vehicles:      viper.GetStringSlice("vehicle"),
		DillyDallyP:   float32(viper.GetFloat64("dilly-dally")),
		StayInLaneP:   float32(viper.GetFloat64("stay-in-lane")),
		Blockages:     viper.GetStringSlice("block"),
		TrafficLights: viper.GetStringSlice("traffic-light"),
		Monitors:      viper.GetStringSlice("monitor"),
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func buildSink(road *roadsim.Road, roundCount int) snapshot.SnapshotSink {
	var sinks []snapshot.SnapshotSink

	if viper.GetBool("verbose") {
		sinks = append(sinks, snapshot.NewTextDump(os.Stderr))
	}
	if path := viper.GetString("image"); path != "" {
		// One snapshot is taken before the round loop runs plus one per
		// round, so the raster needs roundCount+1 rows' worth of capacity.
		sinks = append(sinks, snapshot.NewRaster(road, roundCount+1, path, snapshot.OSFilesystem{}))
	}

	switch len(sinks) {
	case 0:
		return snapshot.Noop{}
	case 1:
		return sinks[0]
	default:
		return multiSink(sinks)
	}
}

// multiSink fans one snapshot out to several sinks, closing all of them
// and reporting the first error encountered.
type multiSink []snapshot.SnapshotSink

func (m multiSink) AddSnapshot(road *roadsim.Road) error {
	for _, s := range m {
		if err := s.AddSnapshot(road); err != nil {
			return err
		}
	}
	return nil
}

func (m multiSink) Close() error {
	var firstErr error
	for _, s := range m {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func runApp() error {
	sc, err := loadScenario()
	if err != nil {
		return err
	}

	rng := roadsim.NewRNG(viper.GetInt64("seed"))
	cfg, err := sc.RoadConfig(rng)
	if err != nil {
		return err
	}

	road, err := roadsim.NewRoad(cfg)
	if err != nil {
		return err
	}

	roundCount := viper.GetInt("rounds")
	sink := buildSink(road, roundCount)
	start := time.Now()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if addr := viper.GetString("dashboard"); addr != "" {
		dash := live.NewDashboard(addr)
		go func() {
			if err := dash.Serve(ctx); err != nil {
				fmt.Fprintln(os.Stderr, "highwaysim: dashboard:", err)
			}
		}()
		defer dash.Close()
		sink = multiSink{sink, dash}
	}

	if err := sink.AddSnapshot(road); err != nil {
		return err
	}
	for i := 0; i < roundCount; i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		road.Round()
		if err := sink.AddSnapshot(road); err != nil {
			return err
		}
	}
	if err := sink.Close(); err != nil {
		return err
	}

	monitorCells, err := sc.MonitorCells()
	if err != nil {
		return err
	}
	resultMonitors := make([]result.MonitorCell, len(monitorCells))
	for i, m := range monitorCells {
		resultMonitors[i] = result.MonitorCell{Lane: m.Lane, Index: m.Index}
	}

	res := result.FromRoad(road, time.Since(start), resultMonitors)
	out, err := res.JSON()
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func main() {
	if err := runApp(); err != nil {
		fmt.Fprintln(os.Stderr, "highwaysim:", err)
		os.Exit(1)
	}
}
