package main

//go-build: CGO_ENABLED=0

import (
	"encoding/json"
	"flag"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/airsense/pms.go/pkg/pms"
	"github.com/airsense/pms.go/pkg/transport/gpio"
	"github.com/airsense/pms.go/pkg/transport/serialport"
)

var (
	device     = flag.String("device", "/dev/ttyUSB0", "Serial device of the sensor.")
	baud       = flag.Int("baud", serialport.DefaultBaudRate, "Baud rate.")
	sleepPin   = flag.String("sleep-pin", "", "GPIO name of the SET line, empty if not wired.")
	evalOnly   = flag.Bool("e", false, "Evaluation only, no interactive shell.")
	outputJSON = flag.Bool("json", false, "Print readings in JSON.")
)

func main() {
	flag.Parse()

	port, err := serialport.Open(*device, *baud)
	if err != nil {
		glog.Exitf("open %s: %v", *device, err)
	}
	defer port.Close()

	var pin pms.Pin
	if *sleepPin != "" {
		p, err := gpio.Open(*sleepPin)
		if err != nil {
			glog.Exitf("open sleep pin %s: %v", *sleepPin, err)
		}
		pin = p
	}

	driver := pms.New(pms.Config{Transport: port, SleepPin: pin})

	shell := ishell.New()
	shell.Println("PMS5003 shell, type 'help' for commands")
	for _, cmd := range commands(driver) {
		shell.AddCmd(cmd)
	}
	if *evalOnly {
		if err := shell.Process(flag.Args()...); err != nil {
			glog.Exit(err)
		}
	} else {
		shell.Run()
	}
}

func commands(driver *pms.Driver) []*ishell.Cmd {
	return []*ishell.Cmd{
		{
			Name: "status",
			Help: "show power and warm-up state",
			Func: func(c *ishell.Context) {
				c.Printf("sleeping=%v ready=%v\n", driver.IsSleeping(), driver.IsReady())
			},
		},
		{
			Name:    "read",
			Aliases: []string{"r"},
			Help:    "fetch one measurement",
			Func: func(c *ishell.Context) {
				printResult(c, driver)
			},
		},
		{
			Name:    "watch",
			Aliases: []string{"w"},
			Help:    "N - fetch N measurements, one per second",
			Func: func(c *ishell.Context) {
				n := 10
				if len(c.Args) > 0 {
					var err error
					if n, err = strconv.Atoi(c.Args[0]); err != nil {
						c.Err(err)
						return
					}
				}
				for i := 0; i < n; i++ {
					printResult(c, driver)
					time.Sleep(time.Second)
				}
			},
		},
		{
			Name: "sleep",
			Help: "put the sensor to sleep",
			Func: func(c *ishell.Context) {
				c.Printf("sleeping=%v\n", driver.Sleep())
			},
		},
		{
			Name: "wake",
			Help: "wake the sensor up, restarting the preheat interval",
			Func: func(c *ishell.Context) {
				c.Printf("awake=%v\n", driver.WakeUp())
			},
		},
	}
}

func printResult(c *ishell.Context, driver *pms.Driver) {
	res := driver.Fetch()
	switch res.Status {
	case pms.Preheating:
		c.Printf("preheating, %ds left\n", res.PreheatLeft)
	case pms.NoData:
		c.Println("no data")
	case pms.DataAvailable:
		if *outputJSON {
			out, err := json.Marshal(driver.Measurement())
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(string(out))
		} else {
			c.Println(driver.Measurement())
		}
	}
}
