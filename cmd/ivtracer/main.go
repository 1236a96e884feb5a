/*
 * ivtracer - production entry point: real SPI ADC, real GPIO relays,
 * real serial host link.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	getopt "github.com/pborman/getopt/v2"
	"go.bug.st/serial"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/rcornwell/ivtracer/internal/adc/mcp3xxx"
	"github.com/rcornwell/ivtracer/internal/messenger"
	"github.com/rcornwell/ivtracer/internal/relay"
	"github.com/rcornwell/ivtracer/internal/relay/gpiorelay"
	"github.com/rcornwell/ivtracer/internal/store"
	"github.com/rcornwell/ivtracer/internal/supervisor"
	logger "github.com/rcornwell/ivtracer/util/logger"
)

var Logger *slog.Logger

const (
	defaultSSRCalDuration  = 500 * time.Millisecond
	defaultSSRReadDuration = 100 * time.Millisecond
)

func main() {
	optSerialPort := getopt.StringLong("serial", 's', "/dev/ttyUSB0", "Host serial port")
	optSPIPort := getopt.StringLong("spi", 'p', "", "SPI port for the ADC (empty: autodetect)")
	optEEPROM := getopt.StringLong("eeprom", 'e', "ivtracer.eeprom", "Persisted config store path")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Verbose logging")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logFile *os.File
	if *optLogFile != "" {
		logFile, _ = os.Create(*optLogFile)
	}
	Logger = logger.NewDefault(logFile, *optDebug)
	slog.SetDefault(Logger)

	Logger.Info("ivtracer starting")

	if _, err := host.Init(); err != nil {
		Logger.Error("periph host init failed", "err", err)
		os.Exit(1)
	}

	spiPort, err := spireg.Open(*optSPIPort)
	if err != nil {
		Logger.Error("opening SPI port", "err", err)
		os.Exit(1)
	}
	defer spiPort.Close()

	adc, err := mcp3xxx.Open(spiPort)
	if err != nil {
		Logger.Error("opening ADC", "err", err)
		os.Exit(1)
	}

	ee, err := store.Open(*optEEPROM, 64)
	if err != nil {
		Logger.Error("opening config store", "err", err)
		os.Exit(1)
	}

	pins := gpiorelay.Pins{
		Primary:   gpioreg.ByName("GPIO17"),
		Secondary: gpioreg.ByName("GPIO27"),
		SSR2:      gpioreg.ByName("GPIO22"),
		SSR3:      gpioreg.ByName("GPIO23"),
		SSR4:      gpioreg.ByName("GPIO24"),
		SSR6:      gpioreg.ByName("GPIO25"),
	}
	activeHigh := ee.PolarityActiveHigh()
	gpioRelay := gpiorelay.New(pins, activeHigh)

	st := store.New(ee, adc, gpioRelay)
	seq := relay.New(gpioRelay)
	st.SetSSRCalibrator(func() (float64, bool, bool, bool) {
		return relay.CalibrateSSRCurrent(seq, adc, defaultSSRCalDuration, defaultSSRReadDuration)
	})

	port, err := serial.Open(*optSerialPort, &serial.Mode{BaudRate: 57600, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit})
	if err != nil {
		Logger.Error("opening serial port", "err", err)
		os.Exit(1)
	}
	defer port.Close()

	msgr := messenger.New(port)
	sv := supervisor.New(msgr, st, adc, seq, Logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go sv.Run()

	<-sigChan
	Logger.Info("shutting down")
	sv.Stop()
}
