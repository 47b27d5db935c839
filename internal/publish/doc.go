// Package publish copies a freshly built firmware image into the fixed
// <project>/build/firmware_latest.bin slot.
//
// Publishing is a convenience step that runs as a post-build action. Publish
// reports failures as classified errors; PostAction, the form registered with
// the build orchestrator, logs them and never lets them reach the build.
//
//	table := hook.NewTable(logger)
//	publish.Register(table, publish.New(publish.WithLogger(logger)))
//	table.Fire(hook.Event{ProjectDir: root, BuildDir: buildDir, Targets: []string{bin}, Env: env})
package publish
