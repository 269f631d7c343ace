// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classdb

import (
	"math"
	"sync"

	"go.gdlang.net/variant"
)

var (
	coreOnce sync.Once
	coreDB   *DB
)

// Core returns the catalog of core classes: the object model, a
// handful of node and resource classes, the engine singletons and
// the global constants. The result is shared and must not be modified.
func Core() *DB {
	coreOnce.Do(func() {
		coreDB = New()
		for _, c := range coreClasses() {
			if err := coreDB.Add(c); err != nil {
				panic(err)
			}
		}
		for _, name := range []string{"Engine", "Input", "OS", "ResourceLoader"} {
			if err := coreDB.AddSingleton(name, name); err != nil {
				panic(err)
			}
		}
		addGlobals(coreDB)
	})
	return coreDB
}

var void variant.PropertyInfo

func fn(name string, ret variant.PropertyInfo, args ...variant.PropertyInfo) *variant.MethodInfo {
	return &variant.MethodInfo{Name: name, Return: ret, Args: args}
}

func defaults(m *variant.MethodInfo, values ...variant.Value) *variant.MethodInfo {
	m.Defaults = values
	return m
}

func virtual(m *variant.MethodInfo) *variant.MethodInfo {
	m.Virtual = true
	return m
}

func static(m *variant.MethodInfo) *variant.MethodInfo {
	m.Static = true
	return m
}

func vararg(m *variant.MethodInfo) *variant.MethodInfo {
	m.Vararg = true
	return m
}

func arg(name string, t variant.Type) variant.PropertyInfo { return variant.Arg(name, t) }

func obj(name, class string) variant.PropertyInfo {
	return variant.PropertyInfo{Name: name, Type: variant.OBJECT, ClassName: class}
}

func enumArg(name, enum string) variant.PropertyInfo {
	return variant.PropertyInfo{Name: name, Type: variant.INT, Enum: enum}
}

func anyArg(name string) variant.PropertyInfo {
	return variant.PropertyInfo{Name: name, Variant: true}
}

func of(t variant.Type) variant.PropertyInfo { return variant.Of(t) }

func values(names ...string) []EnumValue {
	vs := make([]EnumValue, len(names))
	for i, name := range names {
		vs[i] = EnumValue{name, int64(i)}
	}
	return vs
}

func coreClasses() []*Class {
	return []*Class{
		{
			Name:         "Object",
			Instantiable: true,
			Methods: []*variant.MethodInfo{
				fn("get_class", of(variant.STRING)),
				fn("is_class", of(variant.BOOL), arg("class", variant.STRING)),
				fn("set", void, arg("property", variant.STRING_NAME), anyArg("value")),
				fn("get", variant.Any, arg("property", variant.STRING_NAME)),
				vararg(fn("call", variant.Any, arg("method", variant.STRING_NAME))),
				vararg(fn("call_deferred", variant.Any, arg("method", variant.STRING_NAME))),
				fn("has_method", of(variant.BOOL), arg("method", variant.STRING_NAME)),
				fn("has_signal", of(variant.BOOL), arg("signal", variant.STRING_NAME)),
				vararg(fn("emit_signal", enumArg("", "Error"), arg("signal", variant.STRING_NAME))),
				defaults(fn("connect", enumArg("", "Error"), arg("signal", variant.STRING_NAME), arg("callable", variant.CALLABLE), arg("flags", variant.INT)), variant.Int(0)),
				fn("disconnect", void, arg("signal", variant.STRING_NAME), arg("callable", variant.CALLABLE)),
				fn("is_connected", of(variant.BOOL), arg("signal", variant.STRING_NAME), arg("callable", variant.CALLABLE)),
				fn("get_instance_id", of(variant.INT)),
				fn("get_script", variant.Any),
				fn("set_script", void, anyArg("script")),
				defaults(fn("notification", void, arg("what", variant.INT), arg("reversed", variant.BOOL)), variant.Bool(false)),
				fn("free", void),
				fn("to_string", of(variant.STRING)),
				virtual(fn("_init", void)),
				virtual(fn("_notification", void, arg("what", variant.INT))),
				virtual(fn("_to_string", of(variant.STRING))),
				virtual(fn("_get", variant.Any, arg("property", variant.STRING_NAME))),
				virtual(fn("_set", of(variant.BOOL), arg("property", variant.STRING_NAME), anyArg("value"))),
			},
			Signals: []*variant.MethodInfo{
				fn("script_changed", void),
				fn("property_list_changed", void),
			},
			Enums: []Enum{
				{Name: "ConnectFlags", Bitfield: true, Values: []EnumValue{
					{"CONNECT_DEFERRED", 1}, {"CONNECT_PERSIST", 2}, {"CONNECT_ONE_SHOT", 4}, {"CONNECT_REFERENCE_COUNTED", 8},
				}},
			},
			Constants: []EnumValue{
				{"NOTIFICATION_POSTINITIALIZE", 0},
				{"NOTIFICATION_PREDELETE", 1},
			},
		},
		{
			Name:         "RefCounted",
			Parent:       "Object",
			Instantiable: true,
			Methods: []*variant.MethodInfo{
				fn("reference", of(variant.BOOL)),
				fn("unreference", of(variant.BOOL)),
				fn("get_reference_count", of(variant.INT)),
			},
		},
		{
			Name:         "Resource",
			Parent:       "RefCounted",
			Instantiable: true,
			Properties: []variant.PropertyInfo{
				arg("resource_path", variant.STRING),
				arg("resource_name", variant.STRING),
				arg("resource_local_to_scene", variant.BOOL),
			},
			Methods: []*variant.MethodInfo{
				defaults(fn("duplicate", obj("", "Resource"), arg("subresources", variant.BOOL)), variant.Bool(false)),
				fn("get_rid", of(variant.INT)),
				fn("emit_changed", void),
			},
			Signals: []*variant.MethodInfo{fn("changed", void)},
		},
		{
			Name:   "Script",
			Parent: "Resource",
			Methods: []*variant.MethodInfo{
				fn("can_instantiate", of(variant.BOOL)),
				fn("get_base_script", obj("", "Script")),
				fn("get_instance_base_type", of(variant.STRING_NAME)),
				fn("has_source_code", of(variant.BOOL)),
				fn("get_source_code", of(variant.STRING)),
				fn("reload", enumArg("", "Error")),
			},
		},
		{
			Name:         "GDScript",
			Parent:       "Script",
			Instantiable: true,
			Methods: []*variant.MethodInfo{
				vararg(fn("new", variant.Any)),
			},
		},
		{
			Name:   "Texture2D",
			Parent: "Resource",
			Methods: []*variant.MethodInfo{
				fn("get_width", of(variant.INT)),
				fn("get_height", of(variant.INT)),
				fn("get_size", of(variant.VECTOR2)),
			},
		},
		{
			Name:         "PackedScene",
			Parent:       "Resource",
			Instantiable: true,
			Methods: []*variant.MethodInfo{
				defaults(fn("instantiate", obj("", "Node"), enumArg("edit_state", "PackedScene.GenEditState")), variant.Int(0)),
				fn("can_instantiate", of(variant.BOOL)),
			},
			Enums: []Enum{
				{Name: "GenEditState", Values: values("GEN_EDIT_STATE_DISABLED", "GEN_EDIT_STATE_INSTANCE", "GEN_EDIT_STATE_MAIN", "GEN_EDIT_STATE_MAIN_INHERITED")},
			},
		},
		{
			Name:         "Node",
			Parent:       "Object",
			Instantiable: true,
			Properties: []variant.PropertyInfo{
				arg("name", variant.STRING_NAME),
				arg("unique_name_in_owner", variant.BOOL),
				arg("scene_file_path", variant.STRING),
				obj("owner", "Node"),
				enumArg("process_mode", "Node.ProcessMode"),
				arg("process_priority", variant.INT),
			},
			Methods: []*variant.MethodInfo{
				defaults(fn("add_child", void, obj("node", "Node"), arg("force_readable_name", variant.BOOL)), variant.Bool(false)),
				fn("remove_child", void, obj("node", "Node")),
				fn("get_node", obj("", "Node"), arg("path", variant.NODE_PATH)),
				fn("get_node_or_null", obj("", "Node"), arg("path", variant.NODE_PATH)),
				fn("has_node", of(variant.BOOL), arg("path", variant.NODE_PATH)),
				fn("get_parent", obj("", "Node")),
				defaults(fn("get_children", of(variant.ARRAY), arg("include_internal", variant.BOOL)), variant.Bool(false)),
				defaults(fn("get_child", obj("", "Node"), arg("idx", variant.INT), arg("include_internal", variant.BOOL)), variant.Bool(false)),
				defaults(fn("get_child_count", of(variant.INT), arg("include_internal", variant.BOOL)), variant.Bool(false)),
				fn("get_tree", obj("", "SceneTree")),
				fn("get_path", of(variant.NODE_PATH)),
				fn("is_inside_tree", of(variant.BOOL)),
				fn("is_node_ready", of(variant.BOOL)),
				fn("queue_free", void),
				defaults(fn("add_to_group", void, arg("group", variant.STRING_NAME), arg("persistent", variant.BOOL)), variant.Bool(false)),
				fn("is_in_group", of(variant.BOOL), arg("group", variant.STRING_NAME)),
				fn("set_process", void, arg("enable", variant.BOOL)),
				fn("set_physics_process", void, arg("enable", variant.BOOL)),
				fn("get_process_delta_time", of(variant.FLOAT)),
				defaults(fn("duplicate", obj("", "Node"), arg("flags", variant.INT)), variant.Int(15)),
				virtual(fn("_ready", void)),
				virtual(fn("_enter_tree", void)),
				virtual(fn("_exit_tree", void)),
				virtual(fn("_process", void, arg("delta", variant.FLOAT))),
				virtual(fn("_physics_process", void, arg("delta", variant.FLOAT))),
				virtual(fn("_input", void, obj("event", "InputEvent"))),
				virtual(fn("_unhandled_input", void, obj("event", "InputEvent"))),
			},
			Signals: []*variant.MethodInfo{
				fn("ready", void),
				fn("renamed", void),
				fn("tree_entered", void),
				fn("tree_exiting", void),
				fn("tree_exited", void),
				fn("child_entered_tree", void, obj("node", "Node")),
			},
			Enums: []Enum{
				{Name: "ProcessMode", Values: values("PROCESS_MODE_INHERIT", "PROCESS_MODE_PAUSABLE", "PROCESS_MODE_WHEN_PAUSED", "PROCESS_MODE_ALWAYS", "PROCESS_MODE_DISABLED")},
			},
			Constants: []EnumValue{
				{"NOTIFICATION_ENTER_TREE", 10},
				{"NOTIFICATION_EXIT_TREE", 11},
				{"NOTIFICATION_READY", 13},
				{"NOTIFICATION_PAUSED", 14},
				{"NOTIFICATION_UNPAUSED", 15},
				{"NOTIFICATION_PHYSICS_PROCESS", 16},
				{"NOTIFICATION_PROCESS", 17},
			},
		},
		{
			Name:   "CanvasItem",
			Parent: "Node",
			Properties: []variant.PropertyInfo{
				arg("visible", variant.BOOL),
				arg("modulate", variant.COLOR),
				arg("self_modulate", variant.COLOR),
				arg("z_index", variant.INT),
			},
			Methods: []*variant.MethodInfo{
				fn("show", void),
				fn("hide", void),
				fn("is_visible_in_tree", of(variant.BOOL)),
				fn("queue_redraw", void),
				fn("get_global_mouse_position", of(variant.VECTOR2)),
				defaults(fn("draw_line", void, arg("from", variant.VECTOR2), arg("to", variant.VECTOR2), arg("color", variant.COLOR), arg("width", variant.FLOAT)), variant.Float(-1)),
				fn("draw_circle", void, arg("position", variant.VECTOR2), arg("radius", variant.FLOAT), arg("color", variant.COLOR)),
				virtual(fn("_draw", void)),
			},
			Signals: []*variant.MethodInfo{
				fn("draw", void),
				fn("visibility_changed", void),
				fn("hidden", void),
			},
			Constants: []EnumValue{
				{"NOTIFICATION_DRAW", 30},
				{"NOTIFICATION_VISIBILITY_CHANGED", 31},
			},
		},
		{
			Name:         "Node2D",
			Parent:       "CanvasItem",
			Instantiable: true,
			Properties: []variant.PropertyInfo{
				arg("position", variant.VECTOR2),
				arg("rotation", variant.FLOAT),
				arg("rotation_degrees", variant.FLOAT),
				arg("scale", variant.VECTOR2),
				arg("global_position", variant.VECTOR2),
				arg("global_rotation", variant.FLOAT),
			},
			Methods: []*variant.MethodInfo{
				fn("translate", void, arg("offset", variant.VECTOR2)),
				fn("rotate", void, arg("radians", variant.FLOAT)),
				fn("look_at", void, arg("point", variant.VECTOR2)),
				fn("get_angle_to", of(variant.FLOAT), arg("point", variant.VECTOR2)),
				fn("to_local", of(variant.VECTOR2), arg("global_point", variant.VECTOR2)),
				fn("to_global", of(variant.VECTOR2), arg("local_point", variant.VECTOR2)),
			},
		},
		{
			Name:         "Sprite2D",
			Parent:       "Node2D",
			Instantiable: true,
			Properties: []variant.PropertyInfo{
				obj("texture", "Texture2D"),
				arg("centered", variant.BOOL),
				arg("offset", variant.VECTOR2),
				arg("flip_h", variant.BOOL),
				arg("flip_v", variant.BOOL),
				arg("frame", variant.INT),
			},
			Methods: []*variant.MethodInfo{
				fn("get_rect", variant.Any),
				fn("is_pixel_opaque", of(variant.BOOL), arg("pos", variant.VECTOR2)),
			},
			Signals: []*variant.MethodInfo{
				fn("frame_changed", void),
				fn("texture_changed", void),
			},
		},
		{
			Name:   "Control",
			Parent: "CanvasItem",
			Properties: []variant.PropertyInfo{
				arg("size", variant.VECTOR2),
				arg("position", variant.VECTOR2),
				arg("tooltip_text", variant.STRING),
			},
			Methods: []*variant.MethodInfo{
				fn("grab_focus", void),
				fn("has_focus", of(variant.BOOL)),
				fn("get_rect", variant.Any),
			},
			Signals: []*variant.MethodInfo{
				fn("resized", void),
				fn("focus_entered", void),
				fn("gui_input", void, obj("event", "InputEvent")),
			},
		},
		{
			Name:         "Label",
			Parent:       "Control",
			Instantiable: true,
			Properties: []variant.PropertyInfo{
				arg("text", variant.STRING),
				arg("uppercase", variant.BOOL),
			},
			Methods: []*variant.MethodInfo{
				fn("get_line_count", of(variant.INT)),
			},
		},
		{
			Name:         "Node3D",
			Parent:       "Node",
			Instantiable: true,
			Properties: []variant.PropertyInfo{
				arg("position", variant.VECTOR3),
				arg("rotation", variant.VECTOR3),
				arg("scale", variant.VECTOR3),
				arg("visible", variant.BOOL),
			},
			Methods: []*variant.MethodInfo{
				fn("translate", void, arg("offset", variant.VECTOR3)),
				fn("rotate_y", void, arg("angle", variant.FLOAT)),
				defaults(fn("look_at", void, arg("target", variant.VECTOR3), arg("up", variant.VECTOR3)), variant.Vector3{X: 0, Y: 1, Z: 0}),
			},
			Signals: []*variant.MethodInfo{fn("visibility_changed", void)},
		},
		{
			Name:         "Timer",
			Parent:       "Node",
			Instantiable: true,
			Properties: []variant.PropertyInfo{
				arg("wait_time", variant.FLOAT),
				arg("one_shot", variant.BOOL),
				arg("autostart", variant.BOOL),
				arg("paused", variant.BOOL),
				arg("time_left", variant.FLOAT),
				enumArg("process_callback", "Timer.TimerProcessCallback"),
			},
			Methods: []*variant.MethodInfo{
				defaults(fn("start", void, arg("time_sec", variant.FLOAT)), variant.Float(-1)),
				fn("stop", void),
				fn("is_stopped", of(variant.BOOL)),
			},
			Signals: []*variant.MethodInfo{fn("timeout", void)},
			Enums: []Enum{
				{Name: "TimerProcessCallback", Values: values("TIMER_PROCESS_PHYSICS", "TIMER_PROCESS_IDLE")},
			},
		},
		{
			Name:   "MainLoop",
			Parent: "Object",
			Methods: []*variant.MethodInfo{
				virtual(fn("_initialize", void)),
				virtual(fn("_process", of(variant.BOOL), arg("delta", variant.FLOAT))),
				virtual(fn("_finalize", void)),
			},
		},
		{
			Name:         "SceneTree",
			Parent:       "MainLoop",
			Instantiable: true,
			Properties: []variant.PropertyInfo{
				arg("paused", variant.BOOL),
				obj("current_scene", "Node"),
				obj("root", "Node"),
			},
			Methods: []*variant.MethodInfo{
				defaults(fn("quit", void, arg("exit_code", variant.INT)), variant.Int(0)),
				defaults(fn("create_timer", obj("", "SceneTreeTimer"), arg("time_sec", variant.FLOAT), arg("process_always", variant.BOOL)), variant.Bool(true)),
				fn("change_scene_to_file", enumArg("", "Error"), arg("path", variant.STRING)),
				fn("reload_current_scene", enumArg("", "Error")),
				fn("get_nodes_in_group", of(variant.ARRAY), arg("group", variant.STRING_NAME)),
				fn("get_frame", of(variant.INT)),
			},
			Signals: []*variant.MethodInfo{
				fn("process_frame", void),
				fn("physics_frame", void),
				fn("tree_changed", void),
				fn("node_added", void, obj("node", "Node")),
			},
		},
		{
			Name:   "SceneTreeTimer",
			Parent: "RefCounted",
			Properties: []variant.PropertyInfo{
				arg("time_left", variant.FLOAT),
			},
			Signals: []*variant.MethodInfo{fn("timeout", void)},
		},
		{
			Name:   "InputEvent",
			Parent: "Resource",
			Properties: []variant.PropertyInfo{
				arg("device", variant.INT),
			},
			Methods: []*variant.MethodInfo{
				fn("is_pressed", of(variant.BOOL)),
				fn("is_echo", of(variant.BOOL)),
				defaults(fn("is_action", of(variant.BOOL), arg("action", variant.STRING_NAME), arg("exact_match", variant.BOOL)), variant.Bool(false)),
				defaults(fn("is_action_pressed", of(variant.BOOL), arg("action", variant.STRING_NAME), arg("allow_echo", variant.BOOL), arg("exact_match", variant.BOOL)), variant.Bool(false), variant.Bool(false)),
				fn("as_text", of(variant.STRING)),
			},
		},
		{
			Name:         "InputEventKey",
			Parent:       "InputEvent",
			Instantiable: true,
			Properties: []variant.PropertyInfo{
				arg("pressed", variant.BOOL),
				enumArg("keycode", "Key"),
				arg("echo", variant.BOOL),
			},
		},
		{
			Name:   "Input",
			Parent: "Object",
			Methods: []*variant.MethodInfo{
				defaults(fn("is_action_pressed", of(variant.BOOL), arg("action", variant.STRING_NAME), arg("exact_match", variant.BOOL)), variant.Bool(false)),
				defaults(fn("is_action_just_pressed", of(variant.BOOL), arg("action", variant.STRING_NAME), arg("exact_match", variant.BOOL)), variant.Bool(false)),
				fn("get_axis", of(variant.FLOAT), arg("negative_action", variant.STRING_NAME), arg("positive_action", variant.STRING_NAME)),
				defaults(fn("get_vector", of(variant.VECTOR2), arg("negative_x", variant.STRING_NAME), arg("positive_x", variant.STRING_NAME), arg("negative_y", variant.STRING_NAME), arg("positive_y", variant.STRING_NAME), arg("deadzone", variant.FLOAT)), variant.Float(-1)),
				fn("is_key_pressed", of(variant.BOOL), enumArg("keycode", "Key")),
				fn("is_mouse_button_pressed", of(variant.BOOL), enumArg("button", "MouseButton")),
				fn("get_mouse_mode", enumArg("", "Input.MouseMode")),
				fn("set_mouse_mode", void, enumArg("mode", "Input.MouseMode")),
			},
			Signals: []*variant.MethodInfo{
				fn("joy_connection_changed", void, arg("device", variant.INT), arg("connected", variant.BOOL)),
			},
			Enums: []Enum{
				{Name: "MouseMode", Values: values("MOUSE_MODE_VISIBLE", "MOUSE_MODE_HIDDEN", "MOUSE_MODE_CAPTURED", "MOUSE_MODE_CONFINED", "MOUSE_MODE_CONFINED_HIDDEN")},
			},
		},
		{
			Name:   "Engine",
			Parent: "Object",
			Properties: []variant.PropertyInfo{
				arg("time_scale", variant.FLOAT),
				arg("max_fps", variant.INT),
				arg("physics_ticks_per_second", variant.INT),
			},
			Methods: []*variant.MethodInfo{
				fn("get_frames_per_second", of(variant.FLOAT)),
				fn("get_process_frames", of(variant.INT)),
				fn("is_editor_hint", of(variant.BOOL)),
				fn("get_version_info", of(variant.DICTIONARY)),
				fn("has_singleton", of(variant.BOOL), arg("name", variant.STRING_NAME)),
			},
		},
		{
			Name:   "OS",
			Parent: "Object",
			Methods: []*variant.MethodInfo{
				fn("get_name", of(variant.STRING)),
				fn("get_environment", of(variant.STRING), arg("variable", variant.STRING)),
				fn("has_feature", of(variant.BOOL), arg("tag_name", variant.STRING)),
				fn("get_ticks_msec", of(variant.INT)),
				fn("get_cmdline_args", of(variant.PACKED_STRING_ARRAY)),
				fn("delay_msec", void, arg("msec", variant.INT)),
			},
		},
		{
			Name:   "ResourceLoader",
			Parent: "Object",
			Methods: []*variant.MethodInfo{
				defaults(fn("load", obj("", "Resource"), arg("path", variant.STRING), arg("type_hint", variant.STRING)), variant.String("")),
				defaults(fn("exists", of(variant.BOOL), arg("path", variant.STRING), arg("type_hint", variant.STRING)), variant.String("")),
			},
		},
		{
			Name:   "FileAccess",
			Parent: "RefCounted",
			Methods: []*variant.MethodInfo{
				static(fn("open", obj("", "FileAccess"), arg("path", variant.STRING), enumArg("flags", "FileAccess.ModeFlags"))),
				static(fn("file_exists", of(variant.BOOL), arg("path", variant.STRING))),
				static(fn("get_file_as_string", of(variant.STRING), arg("path", variant.STRING))),
				fn("get_line", of(variant.STRING)),
				fn("get_as_text", of(variant.STRING)),
				fn("store_string", void, arg("string", variant.STRING)),
				fn("eof_reached", of(variant.BOOL)),
				fn("close", void),
			},
			Enums: []Enum{
				{Name: "ModeFlags", Values: []EnumValue{{"READ", 1}, {"WRITE", 2}, {"READ_WRITE", 3}, {"WRITE_READ", 7}}},
			},
		},
	}
}

func addGlobals(db *DB) {
	db.AddGlobalConstant("PI", variant.Float(math.Pi))
	db.AddGlobalConstant("TAU", variant.Float(2*math.Pi))
	db.AddGlobalConstant("INF", variant.Float(math.Inf(1)))
	db.AddGlobalConstant("NAN", variant.Float(math.NaN()))

	db.AddGlobalEnum("Error", []EnumValue{
		{"OK", 0},
		{"FAILED", 1},
		{"ERR_UNAVAILABLE", 2},
		{"ERR_UNCONFIGURED", 3},
		{"ERR_UNAUTHORIZED", 4},
		{"ERR_PARAMETER_RANGE_ERROR", 5},
		{"ERR_OUT_OF_MEMORY", 6},
		{"ERR_FILE_NOT_FOUND", 7},
		{"ERR_FILE_BAD_DRIVE", 8},
		{"ERR_FILE_BAD_PATH", 9},
		{"ERR_FILE_NO_PERMISSION", 10},
		{"ERR_FILE_ALREADY_IN_USE", 11},
		{"ERR_FILE_CANT_OPEN", 12},
		{"ERR_FILE_CANT_WRITE", 13},
		{"ERR_FILE_CANT_READ", 14},
		{"ERR_FILE_CORRUPT", 16},
		{"ERR_PARSE_ERROR", 43},
		{"ERR_INVALID_DATA", 30},
		{"ERR_INVALID_PARAMETER", 31},
		{"ERR_ALREADY_EXISTS", 32},
		{"ERR_DOES_NOT_EXIST", 33},
		{"ERR_TIMEOUT", 24},
		{"ERR_BUSY", 44},
		{"ERR_BUG", 47},
	})

	keys := []EnumValue{
		{"KEY_NONE", 0},
		{"KEY_SPACE", 32},
		{"KEY_ESCAPE", 4194305},
		{"KEY_TAB", 4194306},
		{"KEY_BACKSPACE", 4194308},
		{"KEY_ENTER", 4194309},
		{"KEY_LEFT", 4194319},
		{"KEY_UP", 4194320},
		{"KEY_RIGHT", 4194321},
		{"KEY_DOWN", 4194322},
		{"KEY_SHIFT", 4194325},
		{"KEY_CTRL", 4194326},
		{"KEY_ALT", 4194328},
	}
	for c := 'A'; c <= 'Z'; c++ {
		keys = append(keys, EnumValue{"KEY_" + string(c), int64(c)})
	}
	for c := '0'; c <= '9'; c++ {
		keys = append(keys, EnumValue{"KEY_" + string(c), int64(c)})
	}
	db.AddGlobalEnum("Key", keys)

	db.AddGlobalEnum("MouseButton", []EnumValue{
		{"MOUSE_BUTTON_NONE", 0},
		{"MOUSE_BUTTON_LEFT", 1},
		{"MOUSE_BUTTON_RIGHT", 2},
		{"MOUSE_BUTTON_MIDDLE", 3},
		{"MOUSE_BUTTON_WHEEL_UP", 4},
		{"MOUSE_BUTTON_WHEEL_DOWN", 5},
	})
	db.AddGlobalEnum("Side", values("SIDE_LEFT", "SIDE_TOP", "SIDE_RIGHT", "SIDE_BOTTOM"))
	db.AddGlobalEnum("Corner", values("CORNER_TOP_LEFT", "CORNER_TOP_RIGHT", "CORNER_BOTTOM_RIGHT", "CORNER_BOTTOM_LEFT"))
	db.AddGlobalEnum("Orientation", values("VERTICAL", "HORIZONTAL"))

	// The type tags of typeof(), as they are numbered by this implementation.
	var types []EnumValue
	for t := variant.NIL; t < variant.VARIANT_MAX; t++ {
		types = append(types, EnumValue{"TYPE_" + typeTagName(t), int64(t)})
	}
	types = append(types, EnumValue{"TYPE_MAX", int64(variant.VARIANT_MAX)})
	db.AddGlobalEnum("Variant.Type", types)

	ops := make([]EnumValue, 0, variant.OP_MAX+1)
	for op, name := range operatorTagNames {
		ops = append(ops, EnumValue{"OP_" + name, int64(op)})
	}
	ops = append(ops, EnumValue{"OP_MAX", int64(variant.OP_MAX)})
	db.AddGlobalEnum("Variant.Operator", ops)
}

// typeTagName returns the upper-case spelling of a type used in
// TYPE_ constants, e.g. VECTOR2I or PACKED_INT32_ARRAY.
func typeTagName(t variant.Type) string {
	if t == variant.NIL {
		return "NIL"
	}
	name := t.String()
	var buf []byte
	for i := 0; i < len(name); i++ {
		c := name[i]
		if 'A' <= c && c <= 'Z' && i > 0 && !('A' <= name[i-1] && name[i-1] <= 'Z') {
			buf = append(buf, '_')
		}
		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		buf = append(buf, c)
	}
	return string(buf)
}

var operatorTagNames = [...]string{
	variant.OpEqual:        "EQUAL",
	variant.OpNotEqual:     "NOT_EQUAL",
	variant.OpLess:         "LESS",
	variant.OpLessEqual:    "LESS_EQUAL",
	variant.OpGreater:      "GREATER",
	variant.OpGreaterEqual: "GREATER_EQUAL",
	variant.OpAdd:          "ADD",
	variant.OpSubtract:     "SUBTRACT",
	variant.OpMultiply:     "MULTIPLY",
	variant.OpDivide:       "DIVIDE",
	variant.OpNegate:       "NEGATE",
	variant.OpPositive:     "POSITIVE",
	variant.OpModule:       "MODULE",
	variant.OpPower:        "POWER",
	variant.OpShiftLeft:    "SHIFT_LEFT",
	variant.OpShiftRight:   "SHIFT_RIGHT",
	variant.OpBitAnd:       "BIT_AND",
	variant.OpBitOr:        "BIT_OR",
	variant.OpBitXor:       "BIT_XOR",
	variant.OpBitNegate:    "BIT_NEGATE",
	variant.OpAnd:          "AND",
	variant.OpOr:           "OR",
	variant.OpXor:          "XOR",
	variant.OpNot:          "NOT",
	variant.OpIn:           "IN",
}
