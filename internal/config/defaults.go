package config

const (
	defaultLogDir      = "~/.local/share/modelbridge/logs"
	defaultLockFile    = "~/.local/share/modelbridge/conversion.lock"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultCallTimeout = 300
)

const blenderScript = `import sys, bpy
src, dst, token = sys.argv[sys.argv.index('--') + 1:][:3]
bpy.ops.wm.read_factory_settings(use_empty=True)
ext = src.rsplit('.', 1)[-1].lower()
if ext == 'blend':
    bpy.ops.wm.open_mainfile(filepath=src)
elif ext == 'fbx':
    bpy.ops.import_scene.fbx(filepath=src)
elif ext == 'obj':
    bpy.ops.wm.obj_import(filepath=src)
elif ext == 'dae':
    bpy.ops.wm.collada_import(filepath=src)
if token == 'STL':
    bpy.ops.wm.stl_export(filepath=dst)
else:
    bpy.ops.export_scene.gltf(filepath=dst, export_format=token)
`

const freecadScript = `import FreeCAD, Import, Mesh
doc = FreeCAD.newDocument()
Import.insert(r'{source}', doc.Name)
Mesh.export([o for o in doc.Objects if hasattr(o, 'Shape')], r'{target}')
`

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Conversion: Conversion{
			LockFile:    defaultLockFile,
			CallTimeout: defaultCallTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Apps:    defaultApps(),
		Readers: defaultReaders(),
	}
}

func defaultApps() []App {
	return []App{
		{
			Name:          "freecad",
			Command:       "FreeCADCmd",
			ExportArgs:    []string{"-c", freecadScript},
			SourceFormats: []string{"iges", "igs", "step", "stp", "brep"},
			Formats:       map[string]string{"stl": "stl", "obj": "obj", "3mf": "3mf"},
		},
		{
			Name:          "blender",
			Command:       "blender",
			ProbeArgs:     []string{"--version"},
			ExportArgs:    []string{"--background", "--factory-startup", "--python-expr", blenderScript, "--", "{source}", "{target}", "{token}"},
			SourceFormats: []string{"blend", "fbx", "obj", "dae"},
			Formats:       map[string]string{"glb": "GLB", "gltf": "GLTF_SEPARATE", "stl": "STL"},
		},
		{
			Name:       "assimp",
			Command:    "assimp",
			ProbeArgs:  []string{"version"},
			ExportArgs: []string{"export", "{source}", "{target}", "-f{token}"},
			Formats:    map[string]string{"glb": "glb2", "gltf": "gltf2", "stl": "stl", "obj": "obj"},
		},
	}
}

func defaultReaders() []Reader {
	return []Reader{
		{
			Name:             "cad",
			Extensions:       []string{"iges", "igs", "step", "stp"},
			Apps:             []string{"freecad", "assimp"},
			PreferredFormats: []string{"stl"},
		},
		{
			Name:             "dcc",
			Extensions:       []string{"blend", "fbx", "dae", "3ds"},
			Apps:             []string{"blender", "assimp"},
			PreferredFormats: []string{"glb", "stl"},
		},
	}
}
