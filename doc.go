// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The package implements a WebDriver client that communicates with a
// browser automation server using the JSON Wire Protocol.
//
// See https://code.google.com/p/selenium/wiki/JsonWireProtocol
//
// Example:
//
//	service := webdriver.NewService("/path/to/chromedriver", nil)
//	if err := service.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer service.Stop()
//	driver, err := webdriver.NewRemote(service.URL(),
//		webdriver.WithProfile(webdriver.ChromeProfile(webdriver.ChromeOptions{})))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if _, err := driver.Start(ctx, webdriver.Capabilities{"platform": "Linux"}, nil); err != nil {
//		log.Fatal(err)
//	}
//	defer driver.Quit(ctx)
//	if err := driver.Get(ctx, "http://golang.org"); err != nil {
//		log.Println(err)
//	}
//	elem, err := driver.FindElement(ctx, webdriver.ByCSSSelector("h1"))
//	if errors.Is(err, webdriver.ErrNoSuchElement) {
//		log.Println("no heading")
//	}
//
// Commands can also be queued with a Queue, which runs them one at a time
// on its own goroutine and halts on the first failure until ClearError.
package webdriver
