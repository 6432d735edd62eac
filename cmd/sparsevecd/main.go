package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/akmistry/go-nbd"

	"github.com/akmistry/sparsevec/internal/app/sparsevecd"
	"github.com/akmistry/sparsevec/internal/nbdblock"
	"github.com/akmistry/sparsevec/internal/persist"
	"github.com/akmistry/sparsevec/internal/util"
)

var (
	sizeFlag    = flag.String("size", "", "Device size, e.g. 4G")
	verboseFlag = flag.Bool("verbose", false, "Verbose logging")
	snapshot    = flag.String("snapshot", "disk", "Name of the snapshot under DATA_DIR to load/save")
)

const (
	maxDeviceSize = 16 * (1 << 40)

	blockSize = 4096
)

func main() {
	flag.Parse()

	if flag.NArg() != 2 {
		log.Print("Usage: sparsevecd <NBD_DEVICE> <DATA_DIR>")
		os.Exit(1)
	}

	nbdDev := flag.Arg(0)
	dataDir := flag.Arg(1)

	if *verboseFlag {
		slog.SetDefault(slog.New(slog.NewTextHandler(
			os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	nbdUseNetlink := false
	nbdIndex, err := sparsevecd.ParseNbdIndex(nbdDev)
	if err == nil {
		nbdUseNetlink = true
		log.Print("Using Netlink NBD interface")
	} else {
		log.Print("Using /dev/nbd* NBD interface")
	}

	var deviceSize uint64
	if *sizeFlag != "" {
		deviceSize, err = sparsevecd.ParseSizeString(*sizeFlag)
		if err != nil {
			log.Printf("Invalid size flag: %s", *sizeFlag)
			os.Exit(1)
		}
	}
	util.SetDefaultIfZero(&deviceSize, uint64(blockSize))

	if deviceSize%blockSize != 0 {
		log.Printf("Device size %d must be a multiple of block size %d", deviceSize, blockSize)
		os.Exit(1)
	} else if deviceSize > maxDeviceSize {
		log.Printf("Device size %s is too big (max 16T)", util.DetailedBytes(deviceSize))
		os.Exit(1)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatal(err)
	}
	store, err := persist.NewFileStore(filepath.Join(dataDir, "snapshots"))
	if err != nil {
		log.Fatal(err)
	}

	dev, err := nbdblock.LoadDevice(store, *snapshot)
	if err != nil {
		slog.Debug("no existing snapshot, starting empty", "snapshot", *snapshot, "err", err)
		dev = nbdblock.NewDevice(int64(deviceSize), store, *snapshot)
	}
	log.Printf("Serving device of size %s", util.DetailedBytes(uint64(dev.Size())))

	nbdOpts := nbd.BlockDeviceOptions{
		BlockSize:     blockSize,
		ConcurrentOps: 4,
	}
	var serv *nbd.NbdServer
	if nbdUseNetlink {
		serv, err = nbd.NewServerWithNetlink(nbdIndex, dev, dev.Size(), nbdOpts)
	} else {
		serv, err = nbd.NewServer(nbdDev, dev, dev.Size(), nbdOpts)
	}
	if err != nil {
		log.Println("Error creating NBD", err)
		os.Exit(1)
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		<-ch
		log.Println("Shutting down after ^C. Will force after 10 seconds.")
		fin := make(chan bool)
		go func() {
			if err := dev.Flush(); err != nil {
				log.Println("Error flushing snapshot: ", err)
			}
			serv.Disconnect()
			close(fin)
		}()
		select {
		case <-fin:
		case <-time.After(10 * time.Second):
			log.Println("Force shutting down.")
			os.Exit(1)
		}
	}()

	err = serv.Run()
	if err != nil {
		log.Println("NBD run error: ", err)
		serv.Disconnect()
	}
}
