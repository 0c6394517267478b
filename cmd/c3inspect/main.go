package main

import (
	"fmt"
	"os"

	"c3-bundle-loader/internal/bundle"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: c3inspect <file.c3b|file.c3t> ...")
		os.Exit(2)
	}

	for _, arg := range os.Args[1:] {
		b := bundle.New()
		if err := b.Load(arg); err != nil {
			fmt.Fprintf(os.Stderr, "Load error %s: %v\n", arg, err)
			continue
		}

		format := "json"
		if b.IsBinary() {
			format = "binary"
		}
		fmt.Printf("\n=== %s (version=%s format=%s) ===\n", arg, b.Version(), format)

		printMeshes(b)
		printMaterials(b)
		printNodes(b)
		printSkin(b)
		printAnimation(b)
	}
}

func printMeshes(b *bundle.Bundle) {
	meshes, err := b.LoadMeshes()
	if err != nil {
		fmt.Printf("  meshes: %v\n", err)
		return
	}
	for i, m := range meshes {
		fmt.Printf("  Mesh[%d]: verts=%d stride=%dB attribs=%d parts=%d\n",
			i, m.VertexCount(), m.PerVertexSize(), len(m.Attribs), len(m.SubMeshIndices))
		for j, a := range m.Attribs {
			fmt.Printf("    attrib[%d]: %s %s\n", j, a.Attrib, a.Type)
		}
		for j, indices := range m.SubMeshIndices {
			id := ""
			if j < len(m.SubMeshIDs) {
				id = m.SubMeshIDs[j]
			}
			box := m.SubMeshAABBs[j]
			fmt.Printf("    part[%d] %q: indices=%d min=(%.1f,%.1f,%.1f) max=(%.1f,%.1f,%.1f)\n",
				j, id, len(indices),
				box.Min[0], box.Min[1], box.Min[2],
				box.Max[0], box.Max[1], box.Max[2])
		}
	}
}

func printMaterials(b *bundle.Bundle) {
	materials, err := b.LoadMaterials()
	if err != nil {
		fmt.Printf("  materials: %v\n", err)
		return
	}
	for i, m := range materials {
		fmt.Printf("  Material[%d] %q: textures=%d\n", i, m.ID, len(m.Textures))
		for j, t := range m.Textures {
			fmt.Printf("    texture[%d] %q: %s usage=%s wrap=%s/%s\n",
				j, t.ID, t.Filename, t.Usage, t.WrapS, t.WrapT)
		}
	}
}

func printNodes(b *bundle.Bundle) {
	nodes, err := b.LoadNodes()
	if err != nil {
		fmt.Printf("  nodes: %v\n", err)
		return
	}
	fmt.Printf("  Nodes: scene=%d skeleton=%d\n", len(nodes.Nodes), len(nodes.Skeleton))
	for _, n := range nodes.Nodes {
		printNode(n, "    ")
	}
	for _, n := range nodes.Skeleton {
		printNode(n, "    ")
	}
}

func printNode(n *bundle.NodeData, indent string) {
	fmt.Printf("%s%q: parts=%d children=%d\n", indent, n.ID, len(n.Parts), len(n.Children))
	for _, c := range n.Children {
		printNode(c, indent+"  ")
	}
}

func printSkin(b *bundle.Bundle) {
	skin, err := b.LoadSkin()
	if err != nil {
		fmt.Printf("  skin: %v\n", err)
		return
	}
	fmt.Printf("  Skin: bones=%d skinBones=%d root=%d\n",
		len(skin.Bones), len(skin.SkinBoneNames()), skin.RootBoneIndex)
}

func printAnimation(b *bundle.Bundle) {
	anim, err := b.LoadAnimation("")
	if err != nil {
		fmt.Printf("  animation: %v\n", err)
		return
	}
	fmt.Printf("  Animation: duration=%.2fs bones(t/r/s)=%d/%d/%d\n",
		anim.Duration, len(anim.TranslationKeys), len(anim.RotationKeys), len(anim.ScaleKeys))
}
