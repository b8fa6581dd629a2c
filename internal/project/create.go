package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Norgate-AV/cpplab/internal/features"
)

// CreateOptions configure a new project skeleton
type CreateOptions struct {
	Language  Language
	Standard  string
	Kind      Kind
	Graphics  bool
	OpenMP    bool
	Toolchain Preference
}

// Create lays out <parent>/<name> with src/ and build/, writes a starter
// main file and persists the sidecar.
func Create(parent, name string, opts CreateOptions) (*Descriptor, error) {
	if opts.Language == "" {
		opts.Language = CPP
	}

	if opts.Standard == "" {
		opts.Standard = DefaultStandard(opts.Language)
	}

	if opts.Kind == "" {
		opts.Kind = Console
	}

	if opts.Toolchain == "" {
		opts.Toolchain = PreferAuto
	}

	if opts.Kind == Graphics {
		opts.Graphics = true
	}

	if opts.Graphics {
		opts.OpenMP = false
	}

	root, err := filepath.Abs(filepath.Join(parent, name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	ext := ".cpp"
	if opts.Language == C {
		ext = ".c"
	}

	mainFile := "src/main" + ext

	d := &Descriptor{
		Name:      name,
		Root:      root,
		Language:  opts.Language,
		Standard:  opts.Standard,
		Kind:      opts.Kind,
		Features:  features.Set{Graphics: opts.Graphics, OpenMP: opts.OpenMP},
		Toolchain: opts.Toolchain,
		Files:     []string{mainFile},
		MainFile:  mainFile,
	}

	// Reject bad input before touching the filesystem
	if err := d.Validate(); err != nil {
		return nil, err
	}

	for _, dir := range []string{filepath.Join(root, "src"), filepath.Join(root, BuildDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	src := template(opts.Language, opts.Graphics, opts.OpenMP)
	if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(mainFile)), []byte(src), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write main file: %w", err)
	}

	if err := d.Save(); err != nil {
		return nil, err
	}

	return d, nil
}

func template(lang Language, graphics, openmp bool) string {
	switch {
	case graphics && lang == C:
		return cGraphicsMain
	case graphics:
		return cppGraphicsMain
	case openmp && lang == C:
		return cOpenMPMain
	case openmp:
		return cppOpenMPMain
	case lang == C:
		return cMain
	default:
		return cppMain
	}
}

const cMain = `#include <stdio.h>

int main() {
    printf("Hello from CppLab!\n");
    return 0;
}
`

const cppMain = `#include <iostream>

int main() {
    std::cout << "Hello from CppLab!" << std::endl;
    return 0;
}
`

const cGraphicsMain = `#include <graphics.h>
#include <stdio.h>

int main() {
    int gd = DETECT, gm;
    initgraph(&gd, &gm, "");

    outtextxy(250, 200, "Hello from CppLab!");
    circle(300, 250, 50);

    getch();
    closegraph();
    return 0;
}
`

const cppGraphicsMain = `#include <graphics.h>
#include <iostream>

int main() {
    int gd = DETECT, gm;
    initgraph(&gd, &gm, "");

    outtextxy(250, 200, "Hello from CppLab!");
    circle(300, 250, 50);

    getch();
    closegraph();
    return 0;
}
`

const cOpenMPMain = `#include <stdio.h>
#include <omp.h>

int main() {
    printf("Hello from CppLab!\n");

    #pragma omp parallel
    {
        int tid = omp_get_thread_num();
        printf("Thread %d says hi!\n", tid);
    }

    return 0;
}
`

const cppOpenMPMain = `#include <iostream>
#include <omp.h>

int main() {
    std::cout << "Hello from CppLab!" << std::endl;

    #pragma omp parallel
    {
        int tid = omp_get_thread_num();
        #pragma omp critical
        std::cout << "Thread " << tid << " says hi!" << std::endl;
    }

    return 0;
}
`
