package bitbrik

import (
	"github.com/bitbriks/bitbrik/document"
	"github.com/bitbriks/bitbrik/nodes"
)

// WelcomeHeading is the title of the welcome content.
const WelcomeHeading = "Welcome to the playground"

// prepopulate fills an empty document with the welcome content.
func prepopulate(tx *document.Tx) error {
	if len(tx.Children(document.RootKey)) > 0 {
		return nil
	}
	text := func(s string) subtree { return tree(document.NewText(s)) }
	formatted := func(s, format string) subtree { return tree(document.NewText(s).ToggleFormat(format)) }
	link := func(url, s string) subtree {
		return tree(nodes.NewLink(url, nodes.LinkAttributes{}), text(s))
	}
	item := func(children ...subtree) subtree { return tree(nodes.NewListItem(), children...) }

	blocks := []subtree{
		tree(nodes.NewHeading("h1"), text(WelcomeHeading)),
		tree(nodes.NewQuote(), text(
			"In case you were wondering what the bar at the top is, it's the toolbar. "+
				"Press ctrl+t to move there and back, and use the arrow keys and enter to apply an action.")),
		tree(document.NewParagraph(),
			text("The playground is a demo environment built with "),
			formatted("bitbrik", "code"),
			text("."),
			text(" Try typing in "),
			formatted("some text", "bold"),
			text(" with "),
			formatted("different", "italic"),
			text(" formats."),
		),
		tree(document.NewParagraph(), text(
			"Make sure to check out the various actions in the toolbar. You can insert tables, images and dividers.")),
		tree(document.NewParagraph(), text("If you'd like to find out more about bitbrik, you can:")),
		tree(nodes.NewList(nodes.ListBullet),
			item(text("Visit the "), link("https://lexical.dev/", "Lexical website"), text(" for documentation and more information.")),
			item(text("Check out the code on our "), link("https://github.com/facebook/lexical", "GitHub repository"), text(".")),
			item(text("Playground code can be found "),
				link("https://github.com/facebook/lexical/tree/main/packages/lexical-playground", "here"), text(".")),
			item(text("Join our "), link("https://discord.com/invite/KmG4wQnnD9", "Discord Server"), text(" and chat with the team.")),
		),
		tree(document.NewParagraph(), text(
			"Lastly, we're constantly adding cool new features to this playground. "+
				"So make sure you check back here when you next get a chance :).")),
	}
	for _, b := range blocks {
		if err := appendTree(tx, tx.Root(), b); err != nil {
			return err
		}
	}
	return nil
}

// subtree is detached content: a node and the subtrees to append to it.
type subtree struct {
	node     document.Node
	children []subtree
}

func tree(n document.Node, children ...subtree) subtree {
	return subtree{node: n, children: children}
}

func appendTree(tx *document.Tx, parent document.Node, t subtree) error {
	n := document.Create(tx, t.node)
	if err := tx.Append(parent, n); err != nil {
		return err
	}
	for _, c := range t.children {
		if err := appendTree(tx, n, c); err != nil {
			return err
		}
	}
	return nil
}
