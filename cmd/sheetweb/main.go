// Command sheetweb serves sprite sheets over HTTP.
//
//	sheetweb -assets ./assets -listen_address :8080
//	curl localhost:8080/sheet/space-shooter/sheet.xml
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strings"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/go-spritesheet/assets"
	"badc0de.net/pkg/go-spritesheet/paths"
	"badc0de.net/pkg/go-spritesheet/spritesheet"
	"badc0de.net/pkg/go-spritesheet/web"
)

var (
	listenAddress = flag.String("listen_address", ":8080", "http listen address for sheetweb")
	assetsFlag    = flag.String("assets", "", "directory or http(s) URL to load assets from; empty searches the default asset directories")
	imageExt      = flag.String("image_ext", spritesheet.DefaultImageExt, "extension of the companion image")
	preload       = flag.String("preload", "", "comma separated descriptors to load before serving")
	banner        = flag.Bool("banner", true, "whether to print a banner on startup")
)

func main() {
	flagutil.Parse()

	if *banner {
		figure.NewFigure("sheetweb", "", true).Print()
	}

	reg := assets.NewRegistry(paths.FromFlag(*assetsFlag))
	l := spritesheet.Register(reg)
	l.ImageExt = *imageExt

	if *preload != "" {
		hs, err := reg.LoadAll(context.Background(), strings.Split(*preload, ","))
		if err != nil {
			glog.Exitf("preloading sheets: %v", err)
		}
		// Keep preloaded sheets for the life of the process.
		glog.Infof("preloaded %d sheets", len(hs))
	}

	h := web.NewHandler(reg)
	defer h.Close()

	r := mux.NewRouter()
	h.RegisterRoutes(r)
	r.HandleFunc("/debug/requests", trace.Traces)
	r.HandleFunc("/debug/events", trace.Events)

	var root http.Handler = r
	root = handlers.CompressHandler(root)
	root = handlers.LoggingHandler(os.Stderr, root)

	glog.Infof("sheetweb listening on %s", *listenAddress)
	glog.Fatal(http.ListenAndServe(*listenAddress, root))
}
