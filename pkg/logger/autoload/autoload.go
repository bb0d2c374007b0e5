// Package autoload initializes the global logger from env config on import:
//
//	import _ "github.com/vinayakrana/Hotel-Chat-BE/pkg/logger/autoload"
package autoload

import (
	configx "github.com/vinayakrana/Hotel-Chat-BE/pkg/config"
	logx "github.com/vinayakrana/Hotel-Chat-BE/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
